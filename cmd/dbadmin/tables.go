package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/koustreak/dbadmin"
)

var tablesCmd = &cobra.Command{
	Use:   "tables <target>",
	Short: "List the user tables in a database",
	Args:  cobra.ExactArgs(1),
	RunE:  runTables,
}

func runTables(cmd *cobra.Command, args []string) error {
	tables, err := dbadmin.ListTables(cmdContext(cmd), resolveTarget(args[0]))
	if err != nil {
		return err
	}
	for _, t := range tables {
		fmt.Println(t)
	}
	return nil
}
