package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/gymbook/internal/application/usecases"
	"github.com/example/gymbook/internal/config"
	"github.com/example/gymbook/internal/domain/booking"
	"github.com/example/gymbook/internal/infrastructure/chrome"
	"github.com/example/gymbook/internal/infrastructure/playwright"
	"github.com/example/gymbook/internal/logging"
	"github.com/example/gymbook/internal/metrics"
	"github.com/spf13/cobra"
)

const pushTimeout = 10 * time.Second

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Sign in and book the target time range (same as running gymbook without a command)",
		Args:  cobra.NoArgs,
		RunE:  runBooking,
	}
}

func runBooking(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		Dir:     cfg.LogDir,
		Console: !cfg.Production(),
	})
	defer logger.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(nil)
	defer func() {
		pushCtx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		defer cancel()
		if err := m.Push(pushCtx, cfg.PushgatewayURL); err != nil {
			logger.Warn("push metrics", "err", err, "url", cfg.PushgatewayURL)
		}
	}()

	started := time.Now()
	page, err := openPage(ctx, cfg, logger)
	if err != nil {
		m.ObserveRun(started, time.Now(), err)
		logger.Error("browser", "err", err, "driver", cfg.Driver)
		return err
	}
	defer func() {
		if err := page.Close(); err != nil {
			logger.Warn("close browser", "err", err)
		}
	}()

	report, err := usecases.NewRun(page, usecases.SettingsFromConfig(cfg), logger, m).Execute(ctx)
	printReport(cmd.OutOrStdout(), report)
	if err != nil {
		return fmt.Errorf("booking run: %w", err)
	}
	return nil
}

func openPage(ctx context.Context, cfg config.Config, logger *logging.Logger) (booking.Page, error) {
	logger.Info("launching browser", "driver", cfg.Driver, "headless", cfg.Headless)
	switch cfg.Driver {
	case config.DriverPlaywright:
		return playwright.Launch(ctx, playwrightOptions(cfg))
	default:
		return chrome.Launch(ctx, chromeOptions(cfg, logger))
	}
}

func playwrightOptions(cfg config.Config) playwright.Options {
	return playwright.Options{
		Headless:    cfg.Headless,
		ExecPath:    cfg.ChromePath,
		IdleTimeout: cfg.WaitTimeout,
		Install:     cfg.PlaywrightInstall,
	}
}

func chromeOptions(cfg config.Config, logger *logging.Logger) chrome.Options {
	return chrome.Options{
		Headless:    cfg.Headless,
		ExecPath:    cfg.ChromePath,
		IdleTimeout: cfg.WaitTimeout,
		Logger:      logger,
	}
}

func printReport(w io.Writer, report booking.Report) {
	for _, r := range report.Results {
		if r.Row == "" {
			fmt.Fprintf(w, "day %d\t%s\n", r.Day, r.Outcome)
			continue
		}
		fmt.Fprintf(w, "day %d\t%s\t%s\n", r.Day, r.Outcome, r.Row)
	}
}
