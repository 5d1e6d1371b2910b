// Package sink defines the output side of the CLI: it renders selected
// records, the core query engine exposes no formatting of its own.
package sink

import (
	"github.com/Geun-Oh/ufwlog/internal/entry"
)

// Sink receives selected records and writes them to an output destination.
type Sink interface {
	// Write outputs a single record.
	Write(r *entry.Record) error

	// Flush ensures all buffered output is written.
	Flush() error

	// Close releases resources held by the sink.
	Close() error

	// Name returns a human-readable identifier for this sink.
	Name() string
}
