// Command migrate applies and authors the SQL schema migrations.
package main

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chiclet/backend/internal/infrastructure/config"
	"github.com/chiclet/backend/internal/infrastructure/logger"
	"github.com/chiclet/backend/internal/infrastructure/migration"
)

type options struct {
	dir      string
	logLevel string
	log      *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Manage the chiclet database schema",
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			log, err := logger.New(&logger.Config{
				Level:      opts.logLevel,
				Format:     "console",
				Output:     "stdout",
				TimeFormat: "2006-01-02 15:04:05",
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			opts.log = log
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if opts.log != nil {
				_ = opts.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&opts.dir, "path", "",
		"migrations directory; empty uses the migrations built into the binary")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "debug, info, warn or error")

	root.AddCommand(
		withMigrator(opts, &cobra.Command{Use: "up", Short: "Apply all pending migrations"},
			func(m *migration.Migrator, _ []string) error { return m.Up() }),
		withMigrator(opts, &cobra.Command{Use: "down", Short: "Roll back every migration"},
			func(m *migration.Migrator, _ []string) error { return m.Down() }),
		withMigrator(opts, &cobra.Command{
			Use:   "step <n>",
			Short: "Apply n migrations; negative n rolls back",
			Args:  cobra.ExactArgs(1),
		}, func(m *migration.Migrator, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid step count %q", args[0])
			}
			return m.Steps(n)
		}),
		withMigrator(opts, &cobra.Command{Use: "version", Short: "Show the applied schema version"},
			func(m *migration.Migrator, _ []string) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				if version == 0 {
					opts.log.Info("No migrations applied")
					return nil
				}
				opts.log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
				return nil
			}),
		withMigrator(opts, &cobra.Command{
			Use:   "force <version>",
			Short: "Set the version without running migrations",
			Args:  cobra.ExactArgs(1),
		}, func(m *migration.Migrator, args []string) error {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			return m.Force(v)
		}),
		newCreateCmd(opts),
		newListCmd(opts),
	)
	return root
}

// withMigrator connects to the configured database and runs fn with a migrator
func withMigrator(opts *options, cmd *cobra.Command, fn func(*migration.Migrator, []string) error) *cobra.Command {
	cmd.RunE = func(_ *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		db, err := sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			return fmt.Errorf("ping database: %w", err)
		}

		m, err := migration.New(db, opts.dir, opts.log)
		if err != nil {
			return err
		}
		defer m.Close()

		return fn(m, args)
	}
	return cmd
}

func newCreateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Write the next up/down migration pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			dir := opts.dir
			if dir == "" {
				dir = "migrations"
			}
			mf, err := migration.CreateMigration(dir, args[0])
			if err != nil {
				return err
			}
			opts.log.Info("Migration created",
				zap.Uint("version", mf.Version),
				zap.String("up", mf.UpPath),
				zap.String("down", mf.DownPath),
			)
			return nil
		},
	}
}

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fsys := migration.Embedded()
			if opts.dir != "" {
				fsys = os.DirFS(opts.dir)
			}
			entries, err := migration.ListMigrations(fsys)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range entries {
				down := ""
				if !e.HasDown {
					down = " (no down)"
				}
				fmt.Fprintf(out, "%06d  %s%s\n", e.Version, e.Name, down)
			}
			return nil
		},
	}
}
