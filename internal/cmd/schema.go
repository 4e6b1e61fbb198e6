package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/willfong/atmsim/internal/database"
	"github.com/willfong/atmsim/internal/ui"
)

// schemaCmd represents the schema command
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Output the audit journal schema",
	Long: `Output the SQL for the audit_logs table.

The table is created automatically by 'atmsim run' when audit.enabled is
set; use this command to review it or to create it ahead of time with a
privileged account.

The schema is designed for MariaDB 11+ but should work with MySQL 8+.

Examples:
  atmsim schema                        # Print the schema
  atmsim schema -o audit.sql           # Save it to a file
  atmsim schema | mysql -u root atm    # Create the table`,
	Args: cobra.NoArgs,
	RunE: runSchema,
}

var schemaOutputFile string

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.Flags().StringVarP(&schemaOutputFile, "output", "o", "", "output file (default: stdout)")
}

func runSchema(cmd *cobra.Command, args []string) error {
	u := ui.New()
	if noColor {
		u.SetNoColor(true)
	}

	content, err := database.AuditSchema()
	if err != nil {
		fmt.Fprintln(os.Stderr, u.Error(fmt.Sprintf("Reading schema: %v", err)))
		return err
	}

	if schemaOutputFile == "" {
		fmt.Fprint(cmd.OutOrStdout(), content)
		return nil
	}

	// Ensure directory exists
	dir := filepath.Dir(schemaOutputFile)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			fmt.Fprintln(os.Stderr, u.Error(fmt.Sprintf("Creating directory: %v", err)))
			return err
		}
	}

	if err := os.WriteFile(schemaOutputFile, []byte(content), 0644); err != nil {
		fmt.Fprintln(os.Stderr, u.Error(fmt.Sprintf("Writing file: %v", err)))
		return err
	}
	fmt.Fprintln(os.Stderr, u.Success("Schema written to: "+schemaOutputFile))
	return nil
}
