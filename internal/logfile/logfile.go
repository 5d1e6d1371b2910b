// Package logfile owns ordered collections of parsed log records and answers
// predicate-based selection over them.
package logfile

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/Geun-Oh/ufwlog/internal/entry"
	"github.com/Geun-Oh/ufwlog/internal/query"
)

// config holds collection construction policy.
type config struct {
	skipMalformed bool
	strictFields  bool
	year          int
}

// Option adjusts collection construction.
type Option func(*config)

// SkipMalformed switches from the default abort-on-first-bad-line policy to
// skip-and-continue. Skips are counted and reported through Stats.
func SkipMalformed() Option {
	return func(c *config) { c.skipMalformed = true }
}

// StrictFields aborts a record when a recognized key's value fails to coerce,
// instead of degrading the field to absent.
func StrictFields() Option {
	return func(c *config) { c.strictFields = true }
}

// WithYear sets the year for the year-less syslog timestamps. When reading
// from a path the default is the file's modification year; from a bare
// reader it is the current year.
func WithYear(year int) Option {
	return func(c *config) { c.year = year }
}

// withYearFromFile is the low-priority default applied by Open.
func withYearFromFile(f *os.File) Option {
	return func(c *config) {
		if c.year != 0 {
			return
		}
		if fi, err := f.Stat(); err == nil {
			c.year = fi.ModTime().Year()
		}
	}
}

func buildConfig(opts []Option) config {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// File is an eagerly parsed, ordered collection of records. Records keep
// file order; selection returns a new collection and never mutates the
// source. The underlying handle is released before Open returns.
type File struct {
	path    string
	records []*entry.Record
	stats   *Stats
}

// Open reads and parses a whole log file. Rotated ".gz" archives are
// decompressed transparently. An unreadable source is fatal to construction.
func Open(path string, opts ...Option) (*File, error) {
	sc, err := OpenScanner(path, opts...)
	if err != nil {
		return nil, err
	}
	defer sc.Close()

	f, err := drain(sc)
	if err != nil {
		return nil, err
	}
	f.path = path
	return f, nil
}

// FromReader reads and parses an open stream.
func FromReader(r io.Reader, opts ...Option) (*File, error) {
	return drain(NewScanner(r, opts...))
}

func drain(sc *Scanner) (*File, error) {
	var records []*entry.Record
	for sc.Scan() {
		records = append(records, sc.Record())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return &File{records: records, stats: sc.Stats()}, nil
}

// Path returns the source path, empty for reader-backed collections.
func (f *File) Path() string { return f.path }

// Len returns the number of records.
func (f *File) Len() int { return len(f.records) }

// At returns the record at position i, in file order.
func (f *File) At(i int) *entry.Record { return f.records[i] }

// Records returns the records in file order. The slice is a copy; the
// records themselves are immutable and shared.
func (f *File) Records() []*entry.Record {
	out := make([]*entry.Record, len(f.records))
	copy(out, f.records)
	return out
}

// Select returns the ordered subsequence of records matching the predicate,
// as a new independent collection. Selecting on an already-selected
// collection narrows further: f.Select(p).Select(q) equals f.Select(p.And(q)).
// Duplicates in the source are preserved.
func (f *File) Select(p *query.Predicate) *File {
	var matched []*entry.Record
	for _, r := range f.records {
		if p.Eval(r) {
			matched = append(matched, r)
		}
	}
	return &File{path: f.path, records: matched, stats: f.stats}
}

// Stats returns line accounting from when the collection was parsed.
// Selections share their source's stats.
func (f *File) Stats() *Stats {
	if f.stats == nil {
		f.stats = &Stats{}
	}
	return f.stats
}

// WriteJSON serializes the whole collection as a JSON array of record
// objects (see entry.Record.MarshalJSON).
func (f *File) WriteJSON(w io.Writer) error {
	records := f.records
	if records == nil {
		records = []*entry.Record{}
	}
	enc := json.NewEncoder(w)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("serialize collection: %w", err)
	}
	return nil
}

// Glob lists files in dir whose names match the pattern, e.g. "^ufw" to
// pick up ufw.log plus its rotated and gzipped siblings.
func Glob(dir, pattern string) ([]string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad log name pattern %q: %w", pattern, err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list log dir %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if !e.IsDir() && re.MatchString(e.Name()) {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	return paths, nil
}
