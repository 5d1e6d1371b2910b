package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Geun-Oh/ufwlog/internal/logfile"
	"github.com/Geun-Oh/ufwlog/internal/query"
	"github.com/Geun-Oh/ufwlog/internal/sink"
)

var (
	filePath     string
	fieldsConfig string
	wheres       []string
	anyMode      bool
	jsonOut      bool
	outputPath   string
	colorOut     bool
	showStats    bool
	skipBad      bool
	strictFields bool
	refYear      int

	rootCmd = &cobra.Command{
		Use:   "ufwlog",
		Short: "ufwlog queries UFW firewall logs with composable filters",
		Long: `ufwlog parses UFW kernel log lines into typed records and filters them.
Conditions are given as repeated --where flags and combined with AND
(or OR with --any), e.g.:

  ufwlog -f /var/log/ufw.log -w 'DPT==25565' -w 'ACTION==BLOCK'
  ufwlog -f ufw.log.3.gz -w 'SRC%192.168.' --json`,
		RunE: runQuery,
	}
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&filePath, "file", "f", "/var/log/ufw.log", "log file to read (.gz archives supported)")
	pf.StringVar(&fieldsConfig, "fields-config", "", "YAML file with extra field descriptors")
	pf.StringArrayVarP(&wheres, "where", "w", nil, "condition KEY<op>VALUE (ops: ==, !=, <, <=, >, >=, %, !%, in)")
	pf.BoolVar(&anyMode, "any", false, "combine conditions with OR instead of AND")
	pf.BoolVar(&skipBad, "skip-malformed", false, "skip unparseable lines instead of aborting")
	pf.BoolVar(&strictFields, "strict-fields", false, "abort a record on the first bad field value")
	pf.IntVar(&refYear, "year", 0, "year for the year-less syslog timestamps (default: file mtime)")

	rootCmd.Flags().BoolVar(&jsonOut, "json", false, "emit records as JSON lines")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "append output to a file instead of stdout")
	rootCmd.Flags().BoolVar(&colorOut, "color", false, "colorize text output by action")
	rootCmd.Flags().BoolVar(&showStats, "stats", false, "print a parse summary after the output")

	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(fieldsCmd)
}

// setup applies the shared flags: field-table config and collection options.
func setup() ([]logfile.Option, error) {
	if fieldsConfig != "" {
		data, err := os.ReadFile(fieldsConfig)
		if err != nil {
			return nil, fmt.Errorf("read fields config: %w", err)
		}
		if err := query.RegisterYAML(data); err != nil {
			return nil, err
		}
	}

	var opts []logfile.Option
	if skipBad {
		opts = append(opts, logfile.SkipMalformed())
	}
	if strictFields {
		opts = append(opts, logfile.StrictFields())
	}
	if refYear != 0 {
		opts = append(opts, logfile.WithYear(refYear))
	}
	return opts, nil
}

func runQuery(cmd *cobra.Command, args []string) error {
	opts, err := setup()
	if err != nil {
		return err
	}
	pred, err := buildPredicate(wheres, anyMode)
	if err != nil {
		return err
	}

	sc, err := logfile.OpenScanner(filePath, opts...)
	if err != nil {
		return err
	}
	defer sc.Close()
	if pred != nil {
		sc = sc.Where(pred)
	}

	var out sink.Sink
	switch {
	case outputPath != "":
		format := "text"
		if jsonOut {
			format = "json"
		}
		out, err = sink.NewFileSink(outputPath, format)
		if err != nil {
			return err
		}
	case jsonOut:
		out = sink.NewJSONSink(cmd.OutOrStdout())
	default:
		out = sink.NewTerminalSink(cmd.OutOrStdout(), colorOut)
	}
	defer out.Close()

	for sc.Scan() {
		if err := out.Write(sc.Record()); err != nil {
			return fmt.Errorf("write to %s: %w", out.Name(), err)
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	if err := out.Flush(); err != nil {
		return err
	}

	if showStats {
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprintln(cmd.OutOrStdout(), sc.Stats().Summary())
	}
	return nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
