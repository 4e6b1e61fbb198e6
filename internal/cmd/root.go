package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/willfong/atmsim/internal/config"
)

var (
	cfgFile  string
	verbose  bool
	noColor  bool
	logLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "atmsim",
	Short: "Single-session ATM simulator",
	Long: `An ATM simulator for one customer at a time.

Customers log in with an account id and PIN, then withdraw, deposit, check
their balance, or project monthly interest on a savings account. The last
few operations of the session are shown as a transaction history.

Accounts live in memory and reset on every start. Seed accounts, limits,
display currency, and the optional MySQL/MariaDB audit journal are read
from atmsim.yaml or ATMSIM_* environment variables.

Example usage:
  atmsim run
  atmsim run --plain < script.txt
  atmsim accounts
  atmsim schema | mysql -u root atm`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./atmsim.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colors and animations")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	// Silence usage on error - we'll print our own messages
	rootCmd.SilenceUsage = true

	// Set version template
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

// initConfig reads the config file and environment into the global viper
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("atmsim")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home + "/.config/atmsim")
		}
	}

	config.SetDefaults(viper.GetViper())
	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// A missing default file is fine; an explicit --config must exist
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}

// loadConfig unmarshals and validates the merged configuration
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

