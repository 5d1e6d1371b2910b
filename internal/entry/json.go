package entry

import (
	"encoding/json"
)

// Reserved keys in the interchange format. Recognized fields are emitted at
// the top level under their own names; these two never collide with field
// names from the table.
const (
	ExtraKey   = "extra"
	RawLineKey = "raw_line"
)

// MarshalJSON emits one object per record: every recognized field under its
// name with its typed value, the unrecognized-key bag under "extra", and the
// original text under "raw_line". Round-tripping the object reconstructs an
// equal record (see parse.FromJSON), though not the original line layout.
func (r *Record) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, len(r.fields)+2)
	for name, v := range r.fields {
		switch v.kind {
		case KindInt:
			obj[name] = v.num
		case KindFloat:
			obj[name] = v.f
		case KindBool:
			obj[name] = v.b
		default:
			obj[name] = v.Text()
		}
	}
	if len(r.extra) > 0 {
		obj[ExtraKey] = r.extra
	}
	obj[RawLineKey] = r.raw
	return json.Marshal(obj)
}
