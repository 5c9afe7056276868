package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"procomp-service/config"
	"procomp-service/internal/app"
	"procomp-service/internal/database"
	"procomp-service/pkg/logger"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCtx context.Context

var rootCmd = &cobra.Command{
	Use:           "procompctl",
	Short:         "PROCOMP maintenance commands",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	rootCtx = ctx

	rootCmd.AddCommand(migrateCmd, statsCmd, latestUserCmd, sweepCmd, rejectCmd, exportCmd)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// withContainer 建立連線後執行 fn，結束時關閉
func withContainer(fn func(c *app.Container) error) error {
	c, err := app.New(rootCtx, config.LoadConfig(), false)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(c)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		pool, err := database.InitDatabase(&cfg.Database)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := database.Migrate(rootCtx, pool); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "schema applied")
		return nil
	},
}
