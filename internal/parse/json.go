package parse

import (
	"fmt"

	"github.com/valyala/fastjson"

	"github.com/Geun-Oh/ufwlog/internal/entry"
	"github.com/Geun-Oh/ufwlog/internal/query"
)

// FromJSON reconstructs a Record from its interchange form (entry.Record's
// MarshalJSON output). Typed fields are restored through the field table;
// top-level keys the table does not know land in the extra bag alongside the
// serialized one.
func FromJSON(data []byte) (*entry.Record, error) {
	root, err := fastjson.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parse record json: %w", err)
	}
	obj, err := root.Object()
	if err != nil {
		return nil, fmt.Errorf("record json is not an object: %w", err)
	}

	fields := make(map[string]entry.Value)
	extra := make(map[string]string)
	raw := ""

	var visitErr error
	obj.Visit(func(key []byte, v *fastjson.Value) {
		if visitErr != nil {
			return
		}
		name := string(key)
		switch name {
		case entry.RawLineKey:
			raw = string(v.GetStringBytes())
			return
		case entry.ExtraKey:
			bag := v.GetObject()
			if bag == nil {
				visitErr = fmt.Errorf("record json: %s is not an object", entry.ExtraKey)
				return
			}
			bag.Visit(func(k []byte, bv *fastjson.Value) {
				extra[string(k)] = string(bv.GetStringBytes())
			})
			return
		}

		f, ok := query.Lookup(name)
		if !ok {
			extra[name] = valueText(v)
			return
		}
		val, err := decodeTyped(f, v)
		if err != nil {
			visitErr = fmt.Errorf("record json: %w", err)
			return
		}
		fields[f.Name()] = val
	})
	if visitErr != nil {
		return nil, visitErr
	}
	return entry.New(fields, extra, raw), nil
}

func decodeTyped(f query.Field, v *fastjson.Value) (entry.Value, error) {
	switch f.Kind() {
	case entry.KindInt:
		n, err := v.Int64()
		if err != nil {
			return entry.Value{}, &FieldError{Key: f.Name(), Value: v.String(), Err: err}
		}
		return entry.Int(n), nil
	case entry.KindFloat:
		n, err := v.Float64()
		if err != nil {
			return entry.Value{}, &FieldError{Key: f.Name(), Value: v.String(), Err: err}
		}
		return entry.Float(n), nil
	case entry.KindBool:
		b, err := v.Bool()
		if err != nil {
			return entry.Value{}, &FieldError{Key: f.Name(), Value: v.String(), Err: err}
		}
		return entry.Bool(b), nil
	default:
		s := v.GetStringBytes()
		if s == nil {
			return entry.Value{}, &FieldError{Key: f.Name(), Value: v.String(), Err: fmt.Errorf("expected string")}
		}
		val, err := entry.Coerce(f.Kind(), string(s))
		if err != nil {
			return entry.Value{}, &FieldError{Key: f.Name(), Value: string(s), Err: err}
		}
		return val, nil
	}
}

// valueText renders an unrecognized JSON value for the extra bag.
func valueText(v *fastjson.Value) string {
	if s := v.GetStringBytes(); s != nil {
		return string(s)
	}
	return v.String()
}
