package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/koustreak/dbadmin"
)

var existsCmd = &cobra.Command{
	Use:   "exists <target>",
	Short: "Check whether a database exists",
	Long: `Exists prints "true" or "false" and exits with status 1 when the
database does not exist, so it composes in shell scripts:

  dbadmin exists staging || dbadmin create staging`,
	Args: cobra.ExactArgs(1),
	RunE: runExists,
}

func runExists(cmd *cobra.Command, args []string) error {
	exists, err := dbadmin.DatabaseExists(cmdContext(cmd), resolveTarget(args[0]))
	if err != nil {
		return err
	}

	fmt.Println(exists)
	if !exists {
		os.Exit(1)
	}
	return nil
}
