package sink

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Geun-Oh/ufwlog/internal/entry"
	"github.com/Geun-Oh/ufwlog/internal/query"
)

// color ANSI escape codes.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// TerminalSink writes records to a terminal with optional ANSI color.
type TerminalSink struct {
	w     io.Writer
	color bool
}

// NewTerminalSink creates a sink that writes to the given writer.
// If color is true, output will include ANSI color codes based on the
// record's action.
func NewTerminalSink(w io.Writer, color bool) *TerminalSink {
	if w == nil {
		w = os.Stdout
	}
	return &TerminalSink{w: w, color: color}
}

// Write outputs one record as a single summary line:
//
//	[2024-01-29 11:05:31.000000][BLOCK] eth0 203.0.113.9:443 -> 10.0.0.5:25565 TCP
//
// Records without source and destination addresses fall back to the raw line.
func (s *TerminalSink) Write(r *entry.Record) error {
	src, okSrc := r.Get(query.Src.Name())
	dst, okDst := r.Get(query.Dst.Name())
	if !okSrc || !okDst {
		_, err := fmt.Fprintln(s.w, r.Raw())
		return err
	}

	ts := fieldText(r, query.Timestamp)
	action := fieldText(r, query.Action)
	iface := fieldText(r, query.In)
	proto := fieldText(r, query.Proto)

	from := endpoint(src.Text(), r, query.Spt)
	to := endpoint(dst.Text(), r, query.Dpt)

	if !s.color {
		_, err := fmt.Fprintf(s.w, "[%s][%s] %s %s -> %s %s\n", ts, action, iface, from, to, proto)
		return err
	}

	_, err := fmt.Fprintf(s.w, "%s[%s]%s%s[%s]%s %s %s -> %s %s\n",
		colorGray, ts, colorReset,
		s.actionColor(action), action, colorReset,
		iface, from, to, proto,
	)
	return err
}

// Flush is a no-op for terminal output.
func (s *TerminalSink) Flush() error { return nil }

// Close is a no-op for terminal output.
func (s *TerminalSink) Close() error { return nil }

// Name returns the sink identifier.
func (s *TerminalSink) Name() string { return "terminal" }

func (s *TerminalSink) actionColor(action string) string {
	switch strings.ToUpper(action) {
	case "BLOCK", "DENY":
		return colorBold + colorRed
	case "ALLOW":
		return colorGreen
	case "AUDIT":
		return colorYellow
	default:
		return colorCyan
	}
}

func fieldText(r *entry.Record, f query.Field) string {
	v, ok := r.Get(f.Name())
	if !ok {
		return "-"
	}
	return v.Text()
}

func endpoint(addr string, r *entry.Record, port query.Field) string {
	if v, ok := r.Get(port.Name()); ok {
		return addr + ":" + v.Text()
	}
	return addr
}
