package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Geun-Oh/ufwlog/internal/logfile"
	"github.com/Geun-Oh/ufwlog/internal/store"
)

var (
	dbPath  string
	dbTable string

	saveCmd = &cobra.Command{
		Use:   "save",
		Short: "persist matching records to a DuckDB database",
		RunE:  runSave,
	}
)

func init() {
	saveCmd.Flags().StringVar(&dbPath, "db", "", "DuckDB database file (required)")
	saveCmd.Flags().StringVar(&dbTable, "table", "ufw_log", "destination table name")
	_ = saveCmd.MarkFlagRequired("db")
}

func runSave(cmd *cobra.Command, args []string) error {
	opts, err := setup()
	if err != nil {
		return err
	}
	pred, err := buildPredicate(wheres, anyMode)
	if err != nil {
		return err
	}

	f, err := logfile.Open(filePath, opts...)
	if err != nil {
		return err
	}
	if pred != nil {
		f = f.Select(pred)
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Save(dbTable, f); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "saved %d records to %s.%s\n", f.Len(), dbPath, dbTable)
	return nil
}
