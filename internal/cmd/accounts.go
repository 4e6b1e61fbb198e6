package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/willfong/atmsim/internal/ui"
	"github.com/willfong/atmsim/internal/utils"
)

// accountsCmd represents the accounts command
var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List the accounts the ATM starts with",
	Long: `List the seed accounts with their kind and opening balance.

Accounts come from the 'accounts' section of the config file, or the
built-in reference set when none are configured. PINs are never shown.`,
	Args: cobra.NoArgs,
	RunE: runAccounts,
}

func init() {
	rootCmd.AddCommand(accountsCmd)
}

func runAccounts(cmd *cobra.Command, args []string) error {
	u := ui.New()
	if noColor {
		u.SetNoColor(true)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, u.Error(err.Error()))
		return err
	}

	store, err := buildStore(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, u.Error(err.Error()))
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, u.Header("Accounts"))
	fmt.Fprintln(out)
	for _, acc := range store.Snapshot() {
		value := fmt.Sprintf("%-8s %s", acc.Kind, utils.FormatAmount(acc.Balance, cfg.Display.Currency))
		fmt.Fprintln(out, u.KeyValue(acc.ID, value))
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, u.Muted(fmt.Sprintf("%d accounts • withdrawal limit %s • interest %.2f%%/yr",
		store.Len(),
		utils.FormatAmount(cfg.Limits.WithdrawalLimit, cfg.Display.Currency),
		cfg.Limits.InterestRate*100)))
	return nil
}
