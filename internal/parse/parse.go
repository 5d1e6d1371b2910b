// Package parse converts raw UFW kernel log lines into structured records.
//
// A line has a syslog prefix followed by key=value tokens:
//
//	Jan 29 11:05:31 myhost kernel: [ 8159.204917] [UFW BLOCK] IN=eth0 OUT= SRC=203.0.113.9 ...
//
// The prefix yields the TIMESTAMP, HOSTNAME, UPTIME and ACTION fields; the
// kernel pads short uptimes with whitespace inside the brackets, which splits
// the segment into two tokens. The uptime segment and the prefix as a whole
// are optional. Bare TCP flag tokens (ACK, PSH, SYN, ...) parse as booleans.
package parse

import (
	"fmt"
	"strings"
	"time"

	"github.com/Geun-Oh/ufwlog/internal/entry"
	"github.com/Geun-Oh/ufwlog/internal/query"
)

// stampLayout matches the syslog timestamp, which carries no year.
const stampLayout = "Jan 2 15:04:05"

// ufwMarker opens the action segment, e.g. "[UFW BLOCK]".
const ufwMarker = "[UFW"

// LineError reports a line the parser could not recognize at all. It is not
// recoverable by the parser; whether it aborts or skips a whole file is the
// collection's policy, not the parser's.
type LineError struct {
	Line   string
	Reason string
}

func (e *LineError) Error() string {
	return fmt.Sprintf("unparseable line %q: %s", e.Line, e.Reason)
}

// FieldError reports a recognized key whose value failed to coerce to the
// field's declared kind. Surfaced only under strict field parsing; the
// default policy degrades the field to absent and keeps the raw pair in the
// record's extra bag.
type FieldError struct {
	Key   string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s=%q: %v", e.Key, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// Config controls per-line parsing policy. The zero value is the default:
// degrade bad field values, infer the year from the wall clock.
type Config struct {
	// StrictFields aborts the record on the first value that fails to
	// coerce, instead of degrading the field to absent.
	StrictFields bool

	// Year fills in the year the syslog timestamp omits. Zero means the
	// current year.
	Year int
}

// Parse converts one line with default policy.
func Parse(line string) (*entry.Record, error) {
	return Config{}.Parse(line)
}

// Parse converts one raw log line into a Record.
func (c Config) Parse(line string) (*entry.Record, error) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return nil, &LineError{Line: line, Reason: "empty line"}
	}

	fields := make(map[string]entry.Value)
	var extra map[string]string

	// Locate the [UFW ACTION] marker. Tokens before it are the prefix;
	// tokens after it are the key=value segment.
	action := -1
	for i, tok := range tokens {
		if tok == ufwMarker && i+1 < len(tokens) {
			action = i
			break
		}
	}

	body := tokens
	if action >= 0 {
		fields[query.Action.Name()] = entry.Enum(strings.TrimSuffix(tokens[action+1], "]"))
		c.parsePrefix(tokens[:action], fields)
		body = tokens[action+2:]
	} else if i := firstPair(tokens); i > 0 {
		c.parsePrefix(tokens[:i], fields)
		body = tokens[i:]
	}

	pairs := 0
	for _, tok := range body {
		key, value, found := strings.Cut(tok, "=")
		if !found {
			// Bare token: recognized TCP flags parse as booleans, anything
			// else in the body is noise.
			if f, ok := query.Lookup(tok); ok && f.Kind() == entry.KindBool {
				fields[f.Name()] = entry.Bool(true)
			}
			continue
		}
		pairs++
		if key == "" || value == "" {
			// The kernel emits empty pairs like "OUT="; the field is absent.
			continue
		}

		f, ok := query.Lookup(key)
		if !ok {
			if extra == nil {
				extra = make(map[string]string)
			}
			extra[key] = value
			continue
		}
		v, err := entry.Coerce(f.Kind(), value)
		if err != nil {
			if c.StrictFields {
				return nil, &FieldError{Key: key, Value: value, Err: err}
			}
			// Degrade to absent but keep the raw pair for round-trip fidelity.
			if extra == nil {
				extra = make(map[string]string)
			}
			extra[key] = value
			continue
		}
		fields[f.Name()] = v
	}

	if pairs == 0 && action < 0 {
		return nil, &LineError{Line: line, Reason: "no recognizable tokens"}
	}
	return entry.New(fields, extra, line), nil
}

// parsePrefix extracts TIMESTAMP, HOSTNAME and UPTIME from the tokens before
// the action marker. Prefix fields are best-effort: a line that starts
// directly with key=value tokens simply lacks them.
func (c Config) parsePrefix(tokens []string, fields map[string]entry.Value) {
	i := 0
	if len(tokens) >= 3 {
		if ts, err := time.Parse(stampLayout, strings.Join(tokens[:3], " ")); err == nil {
			year := c.Year
			if year == 0 {
				year = time.Now().Year()
			}
			fields[query.Timestamp.Name()] = entry.Time(
				time.Date(year, ts.Month(), ts.Day(), ts.Hour(), ts.Minute(), ts.Second(), 0, time.UTC),
			)
			i = 3
		}
	}
	if i < len(tokens) && tokens[i] != "kernel:" && !strings.HasPrefix(tokens[i], "[") {
		fields[query.Hostname.Name()] = entry.String(tokens[i])
		i++
	}
	for ; i < len(tokens); i++ {
		tok := tokens[i]
		switch {
		case tok == "kernel:":
			continue
		case tok == "[" && i+1 < len(tokens):
			// Whitespace-padded uptime: "[ 8159.204917]".
			i++
			setUptime(fields, strings.TrimSuffix(tokens[i], "]"))
		case strings.HasPrefix(tok, "[") && strings.HasSuffix(tok, "]"):
			setUptime(fields, strings.Trim(tok, "[]"))
		}
	}
}

func setUptime(fields map[string]entry.Value, s string) {
	if v, err := entry.Coerce(entry.KindFloat, s); err == nil {
		fields[query.Uptime.Name()] = v
	}
}

// firstPair returns the index of the first key=value token, or -1.
func firstPair(tokens []string) int {
	for i, tok := range tokens {
		if k, _, ok := strings.Cut(tok, "="); ok && k != "" {
			return i
		}
	}
	return -1
}
