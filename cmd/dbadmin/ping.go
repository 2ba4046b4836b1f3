package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/koustreak/dbadmin"
)

var pingCmd = &cobra.Command{
	Use:   "ping <target>",
	Short: "Check that a database answers on a fresh connection",
	Args:  cobra.ExactArgs(1),
	RunE:  runPing,
}

func runPing(cmd *cobra.Command, args []string) error {
	target := resolveTarget(args[0])
	if err := dbadmin.Ping(cmdContext(cmd), target); err != nil {
		return err
	}
	fmt.Println(redacted(target), "is reachable")
	return nil
}
