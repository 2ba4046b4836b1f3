package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/koustreak/dbadmin/dburl"
	"github.com/koustreak/dbadmin/internal/logger"
)

// Global flag values.
var (
	flagConfig    string
	flagLogLevel  string
	flagLogFormat string
)

// Set by PersistentPreRunE so all subcommands can use them.
var (
	cfg *config
	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "dbadmin",
	Short: "Administrative operations for relational databases",
	Long: `dbadmin checks, creates, destroys, and inspects databases across
PostgreSQL, CockroachDB, MySQL, SQLite, and SQL Server, dispatched on the
dialect named in a connection URL.

Targets are connection URLs (postgres://app@localhost/appdb, sqlite:app.db)
or names defined under "targets" in the config file.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: dbadmin.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "console", "log format (console, json)")

	rootCmd.AddCommand(existsCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(dropCmd)
	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(tablesCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup builds the logger and loads the config file before any subcommand
// runs.
func setup(_ *cobra.Command, _ []string) error {
	log = logger.New(&logger.Config{Level: flagLogLevel, Format: flagLogFormat})

	c, err := loadConfig(flagConfig)
	if err != nil {
		return err
	}
	cfg = c
	return nil
}

// resolveTarget turns a positional argument into a connection URL: a name
// defined in the config file's targets, or a URL taken as given.
func resolveTarget(arg string) string {
	if cfg != nil {
		if u, ok := cfg.Targets[arg]; ok {
			return u
		}
	}
	return arg
}

// cmdContext derives the command context with the logger attached, so
// dialect code can emit structured events.
func cmdContext(cmd *cobra.Command) context.Context {
	return log.WithContext(cmd.Context())
}

// redacted renders a target URL with the password masked for terminal
// output. Unparsable input is returned as-is; the parse error surfaces
// from the operation itself.
func redacted(target string) string {
	u, err := dburl.Parse(target)
	if err != nil {
		return target
	}
	return u.Redacted()
}
