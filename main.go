package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/WWJD/initializers"
	"github.com/WWJD/logger"
	"github.com/WWJD/store"
)

var rootCmd = &cobra.Command{
	Use:   "wwjd",
	Short: "WWJD community guidance service",
	Long: `Serves the WWJD API: people describe a situation and get back scripture
based guidance, which is moderated, matched against earlier situations and
stored for the community to browse and rate.

Running without a subcommand starts the HTTP server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE:  runMigrate,
}

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Email the topic digest to subscribed users",
	Long: `Sends one email per subscribed user with the situations created on their
followed topics during the last day, week or month.

Example:
  wwjd digest --frequency weekly`,
	RunE: runDigest,
}

var digestFrequency string

func init() {
	digestCmd.Flags().StringVar(&digestFrequency, "frequency", "weekly", "digest frequency: daily, weekly or monthly")
	rootCmd.AddCommand(serveCmd, migrateCmd, digestCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds what every command needs: configuration, logger and store.
type app struct {
	cfg   initializers.Config
	log   *logger.Logger
	db    *sql.DB
	store *store.Store
}

func setup(ctx context.Context) (*app, error) {
	initializers.LoadEnv()

	cfg, err := initializers.LoadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.DBURL == "" {
		return nil, fmt.Errorf("DB_URL is required")
	}

	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	goquDB, db, err := initializers.ConnectDB(ctx, cfg.DBURL)
	if err != nil {
		log.Sync()
		return nil, err
	}

	return &app{cfg: cfg, log: log, db: db, store: store.New(goquDB)}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.log.Warn("Failed to close database", "error", err)
	}
	a.log.Sync()
}
