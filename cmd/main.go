package main

import (
	"fmt"
	"ledger-api/app"
	"ledger-api/config"
	"ledger-api/db"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// @title           Ledger API
// @version         1.0
// @description     Accounts with a decimal balance and an append-only transaction log, served as REST and as agent tools.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(configPath)
		},
	}

	root := &cobra.Command{
		Use:          "ledger-api",
		Short:        "Account ledger with REST and agent-tool front-ends",
		SilenceUsage: true,
		RunE:         serve.RunE,
	}
	root.PersistentFlags().StringVar(&configPath, "config", ".", "directory containing config.yml")

	root.AddCommand(serve, newMigrateCmd(&configPath))
	return root
}

func newMigrateCmd(configPath *string) *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadConfig(*configPath); err != nil {
				return err
			}
			return db.Migrate(config.AppConfig.MigrateURL())
		},
	}

	down := &cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back migrations, one step by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return fmt.Errorf("steps must be a positive integer, got %q", args[0])
				}
				steps = n
			}
			if err := config.LoadConfig(*configPath); err != nil {
				return err
			}
			return db.Rollback(config.AppConfig.MigrateURL(), steps)
		},
	}

	migrateCmd.AddCommand(up, down)
	return migrateCmd
}
