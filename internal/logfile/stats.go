package logfile

import (
	"fmt"
	"sync/atomic"
)

// Stats counts what happened to each source line while building a collection.
// Skipped lines only accumulate under the skip-malformed policy; strict
// parsing aborts on the first bad line instead.
type Stats struct {
	lines   atomic.Uint64
	parsed  atomic.Uint64
	skipped atomic.Uint64
}

// Lines returns the number of source lines read.
func (s *Stats) Lines() uint64 { return s.lines.Load() }

// Parsed returns the number of lines that became records.
func (s *Stats) Parsed() uint64 { return s.parsed.Load() }

// Skipped returns the number of malformed lines skipped.
func (s *Stats) Skipped() uint64 { return s.skipped.Load() }

// Summary returns a formatted summary string.
func (s *Stats) Summary() string {
	return fmt.Sprintf(
		"── Summary ──\n"+
			"  Lines read:   %d\n"+
			"  Records:      %d\n"+
			"  Skipped:      %d\n"+
			"─────────────",
		s.Lines(), s.Parsed(), s.Skipped(),
	)
}
