package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/koustreak/dbadmin"
	"github.com/koustreak/dbadmin/schema"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <target> <table>",
	Short: "Print the shape of a table as JSON",
	Long: `Inspect prints the table's columns, primary key, unique constraints,
foreign keys, and indexes, plus the date columns the server assigns on its
own (defaults or ON UPDATE clauses).`,
	Args: cobra.ExactArgs(2),
	RunE: runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	table, err := dbadmin.InspectTable(cmdContext(cmd), resolveTarget(args[0]), args[1])
	if err != nil {
		return err
	}

	out := struct {
		*schema.Table
		AutoAssignedDateColumns []string `json:"auto_assigned_date_columns"`
	}{Table: table}
	for _, c := range table.Columns {
		if schema.IsAutoAssignedDateColumn(c) {
			out.AutoAssignedDateColumns = append(out.AutoAssignedDateColumns, c.Name)
		}
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
