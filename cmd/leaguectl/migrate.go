package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/riskibarqy/playhub-league/internal/infrastructure/migration"
	"github.com/riskibarqy/playhub-league/internal/platform/logging"
)

func newMigrateCmd() *cobra.Command {
	var (
		dbURL string
		dir   string
	)

	// open resolves flags lazily so the subcommand help works without a database.
	open := func() (*migration.Runner, error) {
		_ = godotenv.Load()
		url := strings.TrimSpace(dbURL)
		if url == "" {
			url = strings.TrimSpace(os.Getenv("DB_URL"))
		}
		if url == "" {
			return nil, fmt.Errorf("DB_URL is required (or pass --db-url)")
		}
		migrationsDir, err := migration.ResolveDir(dir)
		if err != nil {
			return nil, err
		}
		return migration.Open(url, migrationsDir, logging.NewJSON(logging.ParseLevel(os.Getenv("LOG_LEVEL"))))
	}

	withRunner := func(fn func(cmd *cobra.Command, r *migration.Runner, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			r, err := open()
			if err != nil {
				return err
			}
			defer r.Close()
			return fn(cmd, r, args)
		}
	}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect database schema migrations",
	}
	cmd.PersistentFlags().StringVar(&dbURL, "db-url", "", "Postgres URL (default $DB_URL)")
	cmd.PersistentFlags().StringVar(&dir, "dir", "", "Migrations directory (default $MIGRATIONS_DIR or ./db/migrations)")

	cmd.AddCommand(
		&cobra.Command{
			Use:          "up",
			Short:        "Apply all pending migrations",
			Args:         cobra.NoArgs,
			SilenceUsage: true,
			RunE: withRunner(func(_ *cobra.Command, r *migration.Runner, _ []string) error {
				return r.Up()
			}),
		},
		&cobra.Command{
			Use:          "down [steps]",
			Short:        "Roll back migrations (default 1 step)",
			Args:         cobra.MaximumNArgs(1),
			SilenceUsage: true,
			RunE: withRunner(func(_ *cobra.Command, r *migration.Runner, args []string) error {
				steps, err := migration.ParseSteps(args)
				if err != nil {
					return err
				}
				return r.Down(steps)
			}),
		},
		&cobra.Command{
			Use:          "version",
			Short:        "Print the applied version",
			Args:         cobra.NoArgs,
			SilenceUsage: true,
			RunE: withRunner(func(cmd *cobra.Command, r *migration.Runner, _ []string) error {
				version, dirty, ok, err := r.Version()
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if !ok {
					fmt.Fprintln(w, "version: none")
				} else {
					fmt.Fprintf(w, "version: %d\n", version)
				}
				fmt.Fprintf(w, "dirty: %t\n", dirty)
				return nil
			}),
		},
		&cobra.Command{
			Use:          "force <version>",
			Short:        "Set the recorded version without running migrations",
			Args:         cobra.ExactArgs(1),
			SilenceUsage: true,
			RunE: withRunner(func(_ *cobra.Command, r *migration.Runner, args []string) error {
				version, err := migration.ParseVersion(args[0])
				if err != nil {
					return err
				}
				return r.Force(version)
			}),
		},
		&cobra.Command{
			Use:          "goto <version>",
			Short:        "Migrate up or down to a version",
			Args:         cobra.ExactArgs(1),
			SilenceUsage: true,
			RunE: withRunner(func(_ *cobra.Command, r *migration.Runner, args []string) error {
				target, err := migration.ParseTarget(args[0])
				if err != nil {
					return err
				}
				return r.Goto(target)
			}),
		},
	)
	return cmd
}
