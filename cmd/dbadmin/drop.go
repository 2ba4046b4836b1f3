package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/koustreak/dbadmin"
	"github.com/koustreak/dbadmin/internal/archive"
	"github.com/koustreak/dbadmin/internal/archive/minio"
	"github.com/koustreak/dbadmin/internal/errs"
)

var (
	flagArchive     bool
	flagForce       bool
	flagDiagnostics bool
)

var dropCmd = &cobra.Command{
	Use:   "drop <target>",
	Short: "Destroy a database",
	Long: `Drop destroys the database. Sessions still connected to it are
disconnected first; on SQL Server the sessions, locks, and recent
statements touching it are logged before the drop.

With --archive, a file-backed (SQLite) database is uploaded to the
configured snapshot store before it is destroyed.`,
	Args: cobra.ExactArgs(1),
	RunE: runDrop,
}

func init() {
	dropCmd.Flags().BoolVar(&flagArchive, "archive", false, "snapshot the database to the archive store before dropping")
	dropCmd.Flags().BoolVar(&flagForce, "force", true, "disconnect other sessions before dropping")
	dropCmd.Flags().BoolVar(&flagDiagnostics, "diagnostics", true, "log sessions still using the database (SQL Server)")
}

func runDrop(cmd *cobra.Command, args []string) error {
	ctx := cmdContext(cmd)
	target := resolveTarget(args[0])

	if flagArchive {
		info, err := snapshotTarget(ctx, target)
		if err != nil {
			return err
		}
		fmt.Printf("archived to %s/%s\n", info.Bucket, info.Key)
	}

	if err := dbadmin.DropDatabase(ctx, target,
		dbadmin.WithForceDisconnect(flagForce),
		dbadmin.WithDiagnostics(flagDiagnostics)); err != nil {
		return err
	}
	fmt.Println("dropped", redacted(target))
	return nil
}

// snapshotTarget uploads the target database to the configured archive
// store.
func snapshotTarget(ctx context.Context, target string) (*archive.SnapshotInfo, error) {
	if cfg.Archive.Endpoint == "" {
		return nil, errs.New(errs.ErrKindInvalidInput,
			"no archive store configured; set archive.endpoint in the config file")
	}

	store, err := minio.New(ctx, &archive.Config{
		Endpoint:  cfg.Archive.Endpoint,
		AccessKey: cfg.Archive.AccessKey,
		SecretKey: cfg.Archive.SecretKey,
		UseSSL:    cfg.Archive.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	defer store.Close()

	bucket := cfg.Archive.Bucket
	if bucket == "" {
		bucket = "db-snapshots"
	}
	return archive.Snapshot(ctx, store, bucket, target)
}
