// Package main provides the dbadmin CLI: database existence checks,
// creation, destruction, reachability probes, schema inspection, and the
// HTTP admin server, driven by connection URLs or configured target names.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "dbadmin:", err)
		os.Exit(1)
	}
}
