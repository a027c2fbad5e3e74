package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/WWJD/services"
)

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.store.Migrate(ctx); err != nil {
		a.log.Error("Migration failed", "error", err)
		return err
	}
	a.log.Info("Database schema is up to date")
	return nil
}

func runDigest(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	email := services.NewEmailService(a.cfg.ResendAPIKey, a.cfg.ResendFromEmail, a.cfg.SiteURL, a.log)
	report, err := services.NewDigestService(a.store, email, a.log).Run(ctx, digestFrequency)
	if err != nil {
		a.log.Error("Digest failed", "frequency", digestFrequency, "error", err)
		return err
	}

	a.log.Info("Digest finished",
		"frequency", digestFrequency,
		"recipients", report.Recipients,
		"sent", report.Sent,
		"skipped", report.Skipped,
		"failed", report.Failed,
	)
	return nil
}
