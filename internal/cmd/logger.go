package cmd

import (
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/willfong/atmsim/internal/config"
)

// newLogger builds the process logger: a charmbracelet handler behind slog.
// It writes to w (stderr in practice) so log lines never mix with the screen.
func newLogger(w io.Writer, cfg config.LogConfig, verbose bool) *slog.Logger {
	level, err := log.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = log.WarnLevel
	}
	if verbose && level > log.DebugLevel {
		level = log.DebugLevel
	}

	styles := log.DefaultStyles()
	infoColor := lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}
	warnColor := lipgloss.AdaptiveColor{Light: "#CC6600", Dark: "#D29922"}
	errorColor := lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF6B6B"}

	styles.Levels[log.InfoLevel] = lipgloss.NewStyle().
		SetString("INFO").
		Bold(true).
		Foreground(infoColor)
	styles.Levels[log.WarnLevel] = lipgloss.NewStyle().
		SetString("WARN").
		Bold(true).
		Foreground(warnColor)
	styles.Levels[log.ErrorLevel] = lipgloss.NewStyle().
		SetString("ERROR").
		Bold(true).
		Foreground(errorColor)
	styles.Keys["reason"] = lipgloss.NewStyle().Foreground(errorColor)
	styles.Keys["err"] = lipgloss.NewStyle().Foreground(errorColor)

	formatter := log.TextFormatter
	if strings.EqualFold(cfg.Format, "json") {
		formatter = log.JSONFormatter
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           level,
		Prefix:          "atmsim",
		Formatter:       formatter,
	})
	logger.SetStyles(styles)

	return slog.New(logger)
}
