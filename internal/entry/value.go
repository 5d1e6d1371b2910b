// Package entry defines the core Record type produced by parsing UFW log lines.
package entry

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the value type a log field carries.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindIP
	KindEnum
	KindTime
	KindBool
)

// String returns the string representation of a Kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindIP:
		return "ip"
	case KindEnum:
		return "enum"
	case KindTime:
		return "time"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// ParseKind converts a string to a Kind. Case-insensitive.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(s) {
	case "string", "str":
		return KindString, true
	case "integer", "int":
		return KindInt, true
	case "float":
		return KindFloat, true
	case "ip", "ip_address", "address":
		return KindIP, true
	case "enum", "enumerated":
		return KindEnum, true
	case "time", "timestamp":
		return KindTime, true
	case "bool", "boolean", "flag":
		return KindBool, true
	default:
		return KindString, false
	}
}

// Value is a typed field value. The zero Value is an empty string.
type Value struct {
	kind Kind
	str  string
	num  int64
	f    float64
	addr netip.Addr
	ts   time.Time
	b    bool
}

// String wraps a free-text value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Int wraps an integer value (ports, lengths, TTLs).
func Int(n int64) Value { return Value{kind: KindInt, num: n} }

// Float wraps a float value (kernel uptime seconds).
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// IP wraps an address value.
func IP(a netip.Addr) Value { return Value{kind: KindIP, addr: a} }

// Enum wraps a closed-vocabulary value (ACTION, PROTO).
func Enum(s string) Value { return Value{kind: KindEnum, str: s} }

// Time wraps a timestamp value.
func Time(t time.Time) Value { return Value{kind: KindTime, ts: t} }

// Bool wraps a flag value (ACK, PSH, ...).
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Kind returns the value's type.
func (v Value) Kind() Kind { return v.kind }

// Text renders the value as it would appear in a log line.
func (v Value) Text() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.num, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindIP:
		return v.addr.String()
	case KindTime:
		return v.ts.Format(TimeLayout)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return v.str
	}
}

// Int returns the underlying integer, or false if the value is not an integer.
func (v Value) Int() (int64, bool) { return v.num, v.kind == KindInt }

// Float returns the underlying float, or false if the value is not a float.
func (v Value) Float() (float64, bool) { return v.f, v.kind == KindFloat }

// Addr returns the underlying address, or false if the value is not an IP.
func (v Value) Addr() (netip.Addr, bool) { return v.addr, v.kind == KindIP }

// Time returns the underlying timestamp, or false if the value is not a time.
func (v Value) Time() (time.Time, bool) { return v.ts, v.kind == KindTime }

// Bool returns the underlying flag, or false if the value is not a bool.
func (v Value) Bool() (bool, bool) { return v.b, v.kind == KindBool }

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInt:
		return v.num == o.num
	case KindFloat:
		return v.f == o.f
	case KindIP:
		return v.addr == o.addr
	case KindTime:
		return v.ts.Equal(o.ts)
	case KindBool:
		return v.b == o.b
	default:
		return v.str == o.str
	}
}

// In reports whether the value equals any element of the set.
func (v Value) In(set []Value) bool {
	for _, o := range set {
		if v.Equal(o) {
			return true
		}
	}
	return false
}

// Compare orders two values of the same kind. Returns false for kinds that
// have no ordering (IP, bool) or mismatched kinds.
func (v Value) Compare(o Value) (int, bool) {
	if v.kind != o.kind {
		return 0, false
	}
	switch v.kind {
	case KindInt:
		switch {
		case v.num < o.num:
			return -1, true
		case v.num > o.num:
			return 1, true
		}
		return 0, true
	case KindFloat:
		switch {
		case v.f < o.f:
			return -1, true
		case v.f > o.f:
			return 1, true
		}
		return 0, true
	case KindTime:
		return v.ts.Compare(o.ts), true
	case KindString, KindEnum:
		return strings.Compare(v.str, o.str), true
	default:
		return 0, false
	}
}

// Like reports whether the value matches a similarity pattern.
// For IP values the pattern is a CIDR prefix ("192.168.0.0/16") or a textual
// prefix ("192.168."); for string and enum values it is a substring.
// Other kinds never match (similarity is rejected at predicate build time).
func (v Value) Like(pattern string) bool {
	switch v.kind {
	case KindIP:
		if p, err := netip.ParsePrefix(pattern); err == nil {
			return p.Contains(v.addr)
		}
		return strings.HasPrefix(v.addr.String(), pattern)
	case KindString, KindEnum:
		return strings.Contains(v.str, pattern)
	default:
		return false
	}
}

// TimeLayout is the interchange format for timestamp values.
const TimeLayout = "2006-01-02 15:04:05.000000"

// Coerce converts a raw operand into a Value of the given kind.
// Strings are parsed for non-string kinds so operands can come straight from
// CLI flags or config. A value that cannot be converted is an error.
func Coerce(k Kind, raw any) (Value, error) {
	if v, ok := raw.(Value); ok {
		if v.kind != k {
			return Value{}, fmt.Errorf("value kind %s, want %s", v.kind, k)
		}
		return v, nil
	}

	switch k {
	case KindString:
		if s, ok := raw.(string); ok {
			return String(s), nil
		}
	case KindEnum:
		if s, ok := raw.(string); ok {
			return Enum(s), nil
		}
	case KindInt:
		switch n := raw.(type) {
		case int:
			return Int(int64(n)), nil
		case int64:
			return Int(n), nil
		case uint:
			return Int(int64(n)), nil
		case uint16:
			return Int(int64(n)), nil
		case string:
			i, err := strconv.ParseInt(n, 10, 64)
			if err != nil {
				return Value{}, fmt.Errorf("parse integer %q: %w", n, err)
			}
			return Int(i), nil
		}
	case KindFloat:
		switch n := raw.(type) {
		case float64:
			return Float(n), nil
		case float32:
			return Float(float64(n)), nil
		case int:
			return Float(float64(n)), nil
		case string:
			f, err := strconv.ParseFloat(n, 64)
			if err != nil {
				return Value{}, fmt.Errorf("parse float %q: %w", n, err)
			}
			return Float(f), nil
		}
	case KindIP:
		switch a := raw.(type) {
		case netip.Addr:
			return IP(a), nil
		case string:
			addr, err := netip.ParseAddr(a)
			if err != nil {
				return Value{}, fmt.Errorf("parse address %q: %w", a, err)
			}
			return IP(addr), nil
		}
	case KindTime:
		switch t := raw.(type) {
		case time.Time:
			return Time(t), nil
		case string:
			for _, layout := range []string{TimeLayout, time.RFC3339, time.Stamp} {
				if ts, err := time.Parse(layout, t); err == nil {
					return Time(ts), nil
				}
			}
			return Value{}, fmt.Errorf("parse time %q", t)
		}
	case KindBool:
		switch b := raw.(type) {
		case bool:
			return Bool(b), nil
		case string:
			v, err := strconv.ParseBool(b)
			if err != nil {
				return Value{}, fmt.Errorf("parse bool %q: %w", b, err)
			}
			return Bool(v), nil
		}
	}
	return Value{}, fmt.Errorf("cannot use %T as %s", raw, k)
}
