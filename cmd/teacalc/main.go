package main

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	teacalc "github.com/greenfuels/teacalc"
	"github.com/greenfuels/teacalc/internal/refdata"
	"github.com/greenfuels/teacalc/internal/resolve"
	"github.com/greenfuels/teacalc/internal/units"
	"github.com/greenfuels/teacalc/model/finance"
	"github.com/greenfuels/teacalc/model/tea"
)

func main() {
	flagLogLevel := "info"
	flagLogFormat := "text"

	root := &cobra.Command{
		Use:           "teacalc",
		Short:         "Techno-economic analysis engine for sustainable-fuel pathways",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initLogging(flagLogLevel, flagLogFormat)
		},
	}

	root.PersistentFlags().StringVar(&flagLogLevel, "log.level", "info", "log severity (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log.format", "text", "log format (text, json)")

	root.AddCommand(newServeCommand())
	root.AddCommand(newCalcCommand())

	if err := root.Execute(); err != nil {
		slog.Error("command failed", "err", err.Error())
		os.Exit(1)
	}
}

// newEngine wires the default pipeline: embedded reference catalog behind a
// TTL cache, the standard unit registry, and the TEA and financial models.
func newEngine(ctx context.Context) *teacalc.Engine {
	provider := refdata.NewCached(ctx, refdata.NewEmbedded(), 15*time.Minute)
	normalizer := units.NewNormalizer(units.NewRegistry())

	return teacalc.NewEngine(
		teacalc.WithResolver(resolve.NewResolver(normalizer, provider)),
		teacalc.WithCalculator(tea.NewCalculator()),
		teacalc.WithProjector(finance.NewProjector()),
	)
}

func initLogging(logLevel string, logFormat string) {
	switch logFormat {
	case "text":
		slog.SetDefault(slog.New(tint.NewHandler(os.Stdout, &tint.Options{
			Level:   slogLevel(logLevel),
			NoColor: !isatty.IsTerminal(os.Stdout.Fd()),
		})))
	case "json":
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slogLevel(logLevel),
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				switch a.Key {
				case slog.LevelKey:
					a.Key = "severity"
					return a
				case slog.MessageKey:
					a.Key = "message"
					return a
				default:
					return a
				}
			},
		})))
	}
}

func slogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	return slog.LevelInfo
}
