package main

import (
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

var (
	dir string
	dsn string
)

var rootCmd = &cobra.Command{
	Use:          "migrator [up|down|status]",
	Short:        "Applies the fisherman schema migrations",
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		command := "up"
		if len(args) == 1 {
			command = args[0]
		}
		if dsn == "" {
			dsn = os.Getenv("DB_DSN")
		}
		if dsn == "" {
			log.Fatal("DB_DSN is empty")
		}

		if err := goose.SetDialect("postgres"); err != nil {
			return err
		}
		db, err := goose.OpenDBWithDriver("pgx", dsn)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := goose.RunContext(cmd.Context(), command, db, dir); err != nil {
			return err
		}
		log.Printf("migrations: %s OK", command)
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVar(&dir, "dir", "migrations", "directory with goose sql migrations")
	rootCmd.Flags().StringVar(&dsn, "dsn", "", "postgres dsn; falls back to DB_DSN")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
