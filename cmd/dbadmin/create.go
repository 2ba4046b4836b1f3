package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/koustreak/dbadmin"
)

var (
	flagEncoding string
	flagTemplate string
)

var createCmd = &cobra.Command{
	Use:   "create <target>",
	Short: "Create a database",
	Args:  cobra.ExactArgs(1),
	RunE:  runCreate,
}

func init() {
	createCmd.Flags().StringVar(&flagEncoding, "encoding", "", "character encoding (default utf8)")
	createCmd.Flags().StringVar(&flagTemplate, "template", "", "template database to clone, PostgreSQL only (default template1)")
}

func runCreate(cmd *cobra.Command, args []string) error {
	target := resolveTarget(args[0])

	var opts []dbadmin.CreateOption
	if flagEncoding != "" {
		opts = append(opts, dbadmin.WithEncoding(flagEncoding))
	}
	if flagTemplate != "" {
		opts = append(opts, dbadmin.WithTemplate(flagTemplate))
	}

	if err := dbadmin.CreateDatabase(cmdContext(cmd), target, opts...); err != nil {
		return err
	}
	fmt.Println("created", redacted(target))
	return nil
}
