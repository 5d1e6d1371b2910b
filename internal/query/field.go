// Package query builds and evaluates predicates over parsed log records.
// A Field is the handle for one known log attribute; its comparison methods
// return immutable Predicate nodes instead of booleans, so conditions can be
// composed before any record is seen.
package query

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/Geun-Oh/ufwlog/internal/entry"
)

// Field identifies one known log attribute: its key as it appears in the log
// line and the value kind it parses to. Two fields with the same name are
// interchangeable.
type Field struct {
	name string
	kind entry.Kind
}

// NewField creates a descriptor. Most callers want the package-level
// descriptors or Lookup instead.
func NewField(name string, kind entry.Kind) Field {
	return Field{name: name, kind: kind}
}

// Name returns the field's key as it appears in log lines.
func (f Field) Name() string { return f.name }

// Kind returns the value kind this field parses to.
func (f Field) Kind() entry.Kind { return f.kind }

// Descriptors for every attribute the parser knows about. The prefix-derived
// fields (TIMESTAMP, HOSTNAME, UPTIME, ACTION) come from the syslog prefix;
// the rest are KEY=value tokens, except the bare TCP flag tokens which parse
// as booleans.
var (
	Timestamp = Field{"TIMESTAMP", entry.KindTime}
	Hostname  = Field{"HOSTNAME", entry.KindString}
	Uptime    = Field{"UPTIME", entry.KindFloat}
	Action    = Field{"ACTION", entry.KindEnum}

	In      = Field{"IN", entry.KindString}
	Out     = Field{"OUT", entry.KindString}
	Mac     = Field{"MAC", entry.KindString}
	Src     = Field{"SRC", entry.KindIP}
	Dst     = Field{"DST", entry.KindIP}
	Len     = Field{"LEN", entry.KindInt}
	Tc      = Field{"TC", entry.KindString}
	Tos     = Field{"TOS", entry.KindString}
	Prec    = Field{"PREC", entry.KindString}
	Ttl     = Field{"TTL", entry.KindInt}
	ID      = Field{"ID", entry.KindInt}
	Proto   = Field{"PROTO", entry.KindEnum}
	Spt     = Field{"SPT", entry.KindInt}
	Dpt     = Field{"DPT", entry.KindInt}
	Window  = Field{"WINDOW", entry.KindInt}
	Res     = Field{"RES", entry.KindString}
	Urgp    = Field{"URGP", entry.KindInt}

	Ack = Field{"ACK", entry.KindBool}
	Psh = Field{"PSH", entry.KindBool}
	Syn = Field{"SYN", entry.KindBool}
	Fin = Field{"FIN", entry.KindBool}
	Rst = Field{"RST", entry.KindBool}
	Urg = Field{"URG", entry.KindBool}
)

// registry is the process-wide field table. It is populated at init time
// (plus optional RegisterYAML at startup) and read-only afterward.
var registry = map[string]Field{}

func init() {
	for _, f := range []Field{
		Timestamp, Hostname, Uptime, Action,
		In, Out, Mac, Src, Dst, Len, Tc, Tos, Prec, Ttl, ID,
		Proto, Spt, Dpt, Window, Res, Urgp,
		Ack, Psh, Syn, Fin, Rst, Urg,
	} {
		registry[f.name] = f
	}
}

// Lookup returns the descriptor for a log key.
func Lookup(name string) (Field, bool) {
	f, ok := registry[name]
	return f, ok
}

// Flags returns the bare-token boolean fields the parser recognizes.
func Flags() []Field {
	return []Field{Ack, Psh, Syn, Fin, Rst, Urg}
}

// Fields returns every registered descriptor, sorted by name.
func Fields() []Field {
	out := make([]Field, 0, len(registry))
	for _, f := range registry {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// fieldConfig is the YAML shape for extending the field table.
type fieldConfig struct {
	Fields []struct {
		Name string `yaml:"name"`
		Kind string `yaml:"kind"`
	} `yaml:"fields"`
}

// RegisterYAML merges extra field descriptors into the table from a YAML
// document of the form:
//
//	fields:
//	  - name: NFLOG
//	    kind: integer
//
// Call once at startup, before any parsing; the table is read-only afterward.
func RegisterYAML(data []byte) error {
	var cfg fieldConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse field config: %w", err)
	}
	for _, fc := range cfg.Fields {
		if fc.Name == "" {
			return fmt.Errorf("field config: entry with empty name")
		}
		kind, ok := entry.ParseKind(fc.Kind)
		if !ok {
			return fmt.Errorf("field config: unknown kind %q for %s", fc.Kind, fc.Name)
		}
		registry[fc.Name] = Field{name: fc.Name, kind: kind}
	}
	return nil
}
