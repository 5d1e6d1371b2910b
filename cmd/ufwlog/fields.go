package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Geun-Oh/ufwlog/internal/query"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "list the known log fields and their value kinds",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := setup(); err != nil {
			return err
		}
		for _, f := range query.Fields() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s\n", f.Name(), f.Kind())
		}
		return nil
	},
}
