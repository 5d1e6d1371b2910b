package logfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/Geun-Oh/ufwlog/internal/entry"
	"github.com/Geun-Oh/ufwlog/internal/parse"
	"github.com/Geun-Oh/ufwlog/internal/query"
)

// Scanner is the streaming alternative to an eager File: records are parsed
// one line at a time as the caller pulls them, so a large archive never sits
// in memory whole. A Scanner is single-pass; re-traversal means re-opening
// the source.
type Scanner struct {
	sc      *bufio.Scanner
	pc      parse.Config
	cfg     config
	pred    *query.Predicate
	rec     *entry.Record
	err     error
	stats   Stats
	closers []io.Closer
}

// NewScanner streams records from a reader.
func NewScanner(r io.Reader, opts ...Option) *Scanner {
	cfg := buildConfig(opts)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Scanner{
		sc:  sc,
		cfg: cfg,
		pc:  parse.Config{StrictFields: cfg.strictFields, Year: cfg.year},
	}
}

// OpenScanner streams records from a file path, transparently decompressing
// rotated ".gz" archives. Close releases the underlying handles.
func OpenScanner(path string, opts ...Option) (*Scanner, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log source %s: %w", path, err)
	}

	var r io.Reader = f
	closers := []io.Closer{f}
	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("open gzip source %s: %w", path, err)
		}
		r = zr
		closers = []io.Closer{zr, f}
	}

	opts = append([]Option{withYearFromFile(f)}, opts...)
	s := NewScanner(r, opts...)
	s.closers = closers
	return s, nil
}

// Where narrows the stream to records matching the predicate. Calling Where
// again narrows further (the predicates combine with AND), mirroring
// File.Select composition.
func (s *Scanner) Where(p *query.Predicate) *Scanner {
	if s.pred != nil {
		p = s.pred.And(p)
	}
	s.pred = p
	return s
}

// Scan advances to the next matching record. It returns false at the end of
// the source or on the first error; Err tells which.
func (s *Scanner) Scan() bool {
	for s.sc.Scan() {
		s.stats.lines.Add(1)
		rec, err := s.pc.Parse(s.sc.Text())
		if err != nil {
			var lineErr *parse.LineError
			if errors.As(err, &lineErr) && s.cfg.skipMalformed {
				s.stats.skipped.Add(1)
				continue
			}
			s.err = err
			return false
		}
		s.stats.parsed.Add(1)
		if s.pred != nil && !s.pred.Eval(rec) {
			continue
		}
		s.rec = rec
		return true
	}
	if err := s.sc.Err(); err != nil {
		s.err = fmt.Errorf("read log source: %w", err)
	}
	return false
}

// Record returns the record produced by the last successful Scan.
func (s *Scanner) Record() *entry.Record { return s.rec }

// Err returns the error that stopped scanning, if any.
func (s *Scanner) Err() error { return s.err }

// Stats returns line accounting for the portion of the source consumed so far.
func (s *Scanner) Stats() *Stats { return &s.stats }

// Close releases the underlying file handles, if the scanner owns any.
func (s *Scanner) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	s.closers = nil
	return first
}
