package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/willfong/atmsim/internal/config"
	"github.com/willfong/atmsim/internal/data"
	"github.com/willfong/atmsim/internal/database"
	"github.com/willfong/atmsim/internal/models"
	"github.com/willfong/atmsim/internal/simulator"
	"github.com/willfong/atmsim/internal/ui"
)

var plain bool

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start an interactive ATM session",
	Long: `Start the ATM. On a terminal this opens a full-screen session; when
input is piped, or with --plain, a line console reads one command per line.

Balances live in memory only and are lost when the program exits.

When audit.enabled is set, every login, operation, and rejection is also
written to the audit_logs table in the configured MySQL/MariaDB database.

Example:
  atmsim run
  atmsim run --plain
  printf 'login user1 1234\nwithdraw 500\nhistory\nquit\n' | atmsim run`,
	RunE: runATM,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&plain, "plain", false, "use the line console even on a terminal")
}

func runATM(cmd *cobra.Command, args []string) error {
	u := ui.New()
	if noColor {
		u.SetNoColor(true)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, u.Error(err.Error()))
		return err
	}

	logger := newLogger(os.Stderr, cfg.Log, cfg.Verbose || verbose)
	slog.SetDefault(logger)

	store, err := buildStore(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, u.Error(err.Error()))
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := simulator.OptionsFromConfig(cfg.Limits)
	opts.Logger = logger

	var (
		pool   *database.Pool
		writer *simulator.AuditWriter
	)
	if cfg.Audit.Enabled {
		pool, writer, err = startAudit(ctx, u, cfg.Audit, logger)
		if err != nil {
			return err
		}
		defer pool.Close()
		opts.Audit = writer
	}

	engine := simulator.NewEngine(store, opts)
	msgs := ui.NewMessages(cfg.Display, cfg.Limits)
	logger.Debug("engine ready", "accounts", store.Len(), "audit", cfg.Audit.Enabled)

	if !plain && ui.Interactive() {
		err = ui.RunScreen(ctx, engine, msgs, u)
	} else {
		console := ui.NewConsole(engine, msgs, u, os.Stdout, ui.Interactive())
		err = console.Run(ctx, os.Stdin)
		if ctx.Err() != nil {
			// Interrupted; still print the summary below
			err = nil
		}
	}
	engine.Logout()

	if writer != nil {
		if stopErr := writer.Stop(config.AuditShutdownTimeout); stopErr != nil {
			logger.Warn("audit writer did not drain", "err", stopErr)
		}
	}

	if verbose || cfg.Verbose {
		fmt.Fprintln(os.Stderr, u.SummaryBox("Session Summary", summaryItems(engine.Metrics().Snapshot(), writer, pool)))
	}

	return err
}

// buildStore seeds accounts from config, or the embedded reference set when none are configured
func buildStore(cfg *config.Config) (*simulator.AccountStore, error) {
	var (
		accounts []models.Account
		err      error
	)
	if len(cfg.Accounts) > 0 {
		accounts, err = cfg.SeedAccounts()
	} else {
		accounts, err = data.DefaultAccounts()
	}
	if err != nil {
		return nil, fmt.Errorf("loading accounts: %w", err)
	}
	return simulator.NewAccountStore(accounts)
}

// startAudit connects to the audit database, creates the table, and starts the writer
func startAudit(ctx context.Context, u *ui.UI, cfg config.AuditConfig, logger *slog.Logger) (*database.Pool, *simulator.AuditWriter, error) {
	pool, err := database.NewPool(cfg.Database)
	if err != nil {
		fmt.Fprintln(os.Stderr, u.Error(fmt.Sprintf("Error creating database pool: %v", err)))
		return nil, nil, err
	}

	connectCtx, cancel := context.WithTimeout(ctx, config.DBConnectTimeout)
	defer cancel()

	spin := u.NewSpinner("Connecting to audit database")
	spin.Start()
	if err := pool.Connect(connectCtx); err != nil {
		spin.Error("connection failed: " + err.Error())
		pool.Close()
		return nil, nil, err
	}

	queries := database.NewQueries(pool)
	if err := queries.EnsureSchema(connectCtx); err != nil {
		spin.Error("schema setup failed: " + err.Error())
		pool.Close()
		return nil, nil, err
	}
	spin.Success("connected!")

	writer := simulator.NewAuditWriter(queries, simulator.AuditWriterConfigFrom(cfg), logger)
	writer.Start()
	return pool, writer, nil
}

// summaryItems lays out the end-of-run counters
func summaryItems(s simulator.MetricsSnapshot, writer *simulator.AuditWriter, pool *database.Pool) []ui.KV {
	items := []ui.KV{
		{Key: "Uptime", Value: ui.FormatDuration(s.Uptime)},
		{Key: "Sessions", Value: fmt.Sprintf("%d", s.Sessions)},
		{Key: "Operations", Value: fmt.Sprintf("%d", s.Operations)},
	}
	for _, op := range simulator.OperationOrder() {
		if n := s.ByOperation[op]; n > 0 {
			items = append(items, ui.KV{Key: "  " + string(op), Value: fmt.Sprintf("%d", n)})
		}
	}
	items = append(items, ui.KV{Key: "Rejected", Value: fmt.Sprintf("%d", s.Errors)})
	for _, et := range s.ErrorTypes() {
		items = append(items, ui.KV{Key: "  " + string(et), Value: fmt.Sprintf("%d", s.ByError[et])})
	}

	if writer != nil {
		stats := writer.GetStats()
		items = append(items,
			ui.KV{Key: "Audit written", Value: fmt.Sprintf("%d", stats.LogsWritten)},
			ui.KV{Key: "Audit dropped", Value: fmt.Sprintf("%d", stats.DroppedLogs)},
		)
	}
	if pool != nil {
		ps := pool.Stats()
		items = append(items,
			ui.KV{Key: "DB queries", Value: fmt.Sprintf("%d (%d failed)", ps.TotalQueries, ps.FailedQueries)},
			ui.KV{Key: "DB latency", Value: ui.FormatDuration(ps.AvgLatency)},
		)
	}
	return items
}
