package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Gunvolt24/order_service/migrations"
)

func main() {
	_ = godotenv.Load(".env.local")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// newRootCmd - migrate up|down|status. DSN берётся из --dsn или ORDER_POSTGRES_DSN.
func newRootCmd() *cobra.Command {
	var dsn string

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Управление схемой БД (goose, встроенные миграции)",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dsn, "dsn", os.Getenv("ORDER_POSTGRES_DSN"), "postgres DSN")

	run := func(action func(context.Context, *sql.DB) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			if dsn == "" {
				return errors.New("dsn is empty: pass --dsn or set ORDER_POSTGRES_DSN")
			}
			db, err := migrations.Open(dsn)
			if err != nil {
				return err
			}
			defer db.Close()
			return action(cmd.Context(), db)
		}
	}

	root.AddCommand(
		&cobra.Command{Use: "up", Short: "Применить все миграции", Args: cobra.NoArgs, RunE: run(migrations.Up)},
		&cobra.Command{Use: "down", Short: "Откатить последнюю миграцию", Args: cobra.NoArgs, RunE: run(migrations.Down)},
		&cobra.Command{Use: "status", Short: "Состояние миграций", Args: cobra.NoArgs, RunE: run(migrations.Status)},
	)
	return root
}
