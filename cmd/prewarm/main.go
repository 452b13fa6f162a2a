// Command prewarm fills the forecast caches for a fixed list of series.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"MacroCast/internal/di"
	"MacroCast/internal/usecase"
	"MacroCast/pkg/config"
	applogger "MacroCast/pkg/logger"
	"MacroCast/pkg/util"
)

var errSeriesFailed = errors.New("one or more series failed")

var (
	configPath string
	series     string
	months     int
	horizon    int
)

var rootCmd = &cobra.Command{
	Use:           "prewarm",
	Short:         "Pre-compute macro forecasts into the cache",
	Long:          `Fetches each configured BCB series, runs the forecast and stores the result in the memory and persistent caches.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "config/config.yaml", "config file path")
	rootCmd.Flags().StringVar(&series, "series", "", "comma separated aliases (default from config)")
	rootCmd.Flags().IntVar(&months, "months", 0, "history window in months (default from config)")
	rootCmd.Flags().IntVar(&horizon, "horizon", 0, "forecast horizon (default from config)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	params := usecase.PrewarmParams{
		Series:  cfg.Prewarm.Series,
		Months:  cfg.Prewarm.Months,
		Horizon: cfg.Prewarm.Horizon,
	}
	if cmd.Flags().Changed("series") {
		params.Series = util.SplitCSV(series)
	}
	if cmd.Flags().Changed("months") {
		params.Months = months
	}
	if cmd.Flags().Changed("horizon") {
		params.Horizon = horizon
	}

	job, cleanup, err := di.InitializePrewarmer(cfg, params)
	if err != nil {
		return fmt.Errorf("prewarm initialization failed: %w", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l, err := applogger.New(&applogger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		return err
	}

	p := job.Params()
	l.Info("prewarm starting",
		applogger.Strings("series", p.Series),
		applogger.Int("months", p.Months),
		applogger.Int("horizon", p.Horizon),
	)

	report := job.Run(ctx)
	for _, it := range report.Items {
		if it.OK {
			l.Info("series warmed",
				applogger.String("series", it.Series),
				applogger.Int("historical", it.Historical),
				applogger.Int("forecast", it.Forecast),
				applogger.String("source", it.Source),
			)
			continue
		}
		l.Error("series failed", applogger.String("series", it.Series), applogger.String("error", it.Error))
	}
	l.Info("prewarm finished",
		applogger.String("from", report.From),
		applogger.Int("failed", report.Failed()),
		applogger.Duration("elapsed_ms", report.FinishedAt.Sub(report.StartedAt)),
	)

	if report.Failed() > 0 {
		return fmt.Errorf("%w: %d of %d", errSeriesFailed, report.Failed(), len(report.Items))
	}
	return nil
}
