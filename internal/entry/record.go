package entry

import (
	"sort"
)

// Record is one parsed firewall log entry. Fields are typed by the field
// table; keys the parser does not recognize are kept verbatim in the extra
// bag, and the raw line is retained so nothing is lost to parsing.
// Records are immutable after construction.
type Record struct {
	fields map[string]Value
	extra  map[string]string
	raw    string
}

// New builds a Record. The maps are copied so the caller cannot alias
// mutable state into the record.
func New(fields map[string]Value, extra map[string]string, raw string) *Record {
	r := &Record{
		fields: make(map[string]Value, len(fields)),
		raw:    raw,
	}
	for k, v := range fields {
		r.fields[k] = v
	}
	if len(extra) > 0 {
		r.extra = make(map[string]string, len(extra))
		for k, v := range extra {
			r.extra[k] = v
		}
	}
	return r
}

// Get returns the typed value for a field name, or false if the record does
// not carry that field.
func (r *Record) Get(name string) (Value, bool) {
	v, ok := r.fields[name]
	return v, ok
}

// Extra returns the verbatim value of an unrecognized key.
func (r *Record) Extra(name string) (string, bool) {
	v, ok := r.extra[name]
	return v, ok
}

// Raw returns the original log line.
func (r *Record) Raw() string { return r.raw }

// FieldNames returns the recognized field names present on the record, sorted.
func (r *Record) FieldNames() []string {
	names := make([]string, 0, len(r.fields))
	for k := range r.fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// ExtraNames returns the unrecognized keys present on the record, sorted.
func (r *Record) ExtraNames() []string {
	names := make([]string, 0, len(r.extra))
	for k := range r.extra {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Equal reports field-for-field equality, including the extra bag.
// The raw line is not compared; two records parsed from differently laid out
// lines can still be equal.
func (r *Record) Equal(o *Record) bool {
	if r == nil || o == nil {
		return r == o
	}
	if len(r.fields) != len(o.fields) || len(r.extra) != len(o.extra) {
		return false
	}
	for k, v := range r.fields {
		ov, ok := o.fields[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	for k, v := range r.extra {
		if ov, ok := o.extra[k]; !ok || v != ov {
			return false
		}
	}
	return true
}
