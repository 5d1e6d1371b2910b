package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Geun-Oh/ufwlog/internal/entry"
)

// ErrTypeMismatch is returned when an operand cannot be compared against a
// field's declared kind. The check happens when the predicate is built, not
// when it is evaluated.
var ErrTypeMismatch = errors.New("type mismatch")

// op identifies a predicate node.
type op int

const (
	opEq op = iota
	opNe
	opLt
	opLe
	opGt
	opGe
	opLike
	opNotLike
	opIn
	opNotIn

	opAnd
	opOr
	opXor
	opNot
)

func (o op) String() string {
	switch o {
	case opEq:
		return "=="
	case opNe:
		return "!="
	case opLt:
		return "<"
	case opLe:
		return "<="
	case opGt:
		return ">"
	case opGe:
		return ">="
	case opLike:
		return "%"
	case opNotLike:
		return "!%"
	case opIn:
		return "in"
	case opNotIn:
		return "not in"
	case opAnd:
		return "AND"
	case opOr:
		return "OR"
	case opXor:
		return "XOR"
	case opNot:
		return "NOT"
	default:
		return "?"
	}
}

// Predicate is an immutable boolean expression tree over a Record. A leaf
// compares one field against an operand; interior nodes combine children
// with AND, OR, XOR or NOT. Composing predicates always allocates a new
// node, never mutates an operand, and evaluation is pure: the same record
// yields the same result on every call.
type Predicate struct {
	op      op
	field   Field
	operand entry.Value
	pattern string        // similarity ops
	set     []entry.Value // membership ops
	left    *Predicate
	right   *Predicate
}

// compare builds a leaf node, coercing the operand to the field's kind.
func (f Field) compare(o op, raw any) (*Predicate, error) {
	v, err := entry.Coerce(f.kind, raw)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w: %v", f.name, ErrTypeMismatch, err)
	}
	return &Predicate{op: o, field: f, operand: v}, nil
}

// ordered reports whether a kind supports <, <=, >, >=.
func ordered(k entry.Kind) bool {
	switch k {
	case entry.KindInt, entry.KindFloat, entry.KindTime, entry.KindString, entry.KindEnum:
		return true
	default:
		return false
	}
}

// Eq matches records whose field equals the operand.
func (f Field) Eq(raw any) (*Predicate, error) { return f.compare(opEq, raw) }

// Ne matches records whose field differs from the operand, including records
// missing the field entirely.
func (f Field) Ne(raw any) (*Predicate, error) { return f.compare(opNe, raw) }

// Lt, Le, Gt and Ge order the field against the operand. Ordering is defined
// for integer, float, time, string and enum kinds; building an ordering
// predicate on an IP or flag field is a type mismatch.
func (f Field) Lt(raw any) (*Predicate, error) { return f.order(opLt, raw) }
func (f Field) Le(raw any) (*Predicate, error) { return f.order(opLe, raw) }
func (f Field) Gt(raw any) (*Predicate, error) { return f.order(opGt, raw) }
func (f Field) Ge(raw any) (*Predicate, error) { return f.order(opGe, raw) }

func (f Field) order(o op, raw any) (*Predicate, error) {
	if !ordered(f.kind) {
		return nil, fmt.Errorf("field %s: %w: %s values have no ordering", f.name, ErrTypeMismatch, f.kind)
	}
	return f.compare(o, raw)
}

// Like matches by similarity: a CIDR or textual prefix for IP fields, a
// substring for string and enum fields. Other kinds reject the pattern at
// build time.
func (f Field) Like(pattern string) (*Predicate, error) {
	switch f.kind {
	case entry.KindIP, entry.KindString, entry.KindEnum:
		return &Predicate{op: opLike, field: f, pattern: pattern}, nil
	default:
		return nil, fmt.Errorf("field %s: %w: similarity is not defined for %s values", f.name, ErrTypeMismatch, f.kind)
	}
}

// NotLike is the exact complement of Like: true for every record Like
// rejects, including records missing the field.
func (f Field) NotLike(pattern string) (*Predicate, error) {
	p, err := f.Like(pattern)
	if err != nil {
		return nil, err
	}
	p2 := *p
	p2.op = opNotLike
	return &p2, nil
}

// In matches records whose field equals any of the operands.
func (f Field) In(raws ...any) (*Predicate, error) { return f.member(opIn, raws) }

// NotIn is the exact complement of In; records missing the field match.
func (f Field) NotIn(raws ...any) (*Predicate, error) { return f.member(opNotIn, raws) }

func (f Field) member(o op, raws []any) (*Predicate, error) {
	set := make([]entry.Value, 0, len(raws))
	for _, raw := range raws {
		v, err := entry.Coerce(f.kind, raw)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w: %v", f.name, ErrTypeMismatch, err)
		}
		set = append(set, v)
	}
	return &Predicate{op: o, field: f, set: set}, nil
}

// And combines two predicates; the result matches when both do.
func (p *Predicate) And(q *Predicate) *Predicate {
	return &Predicate{op: opAnd, left: p, right: q}
}

// Or combines two predicates; the result matches when either does.
func (p *Predicate) Or(q *Predicate) *Predicate {
	return &Predicate{op: opOr, left: p, right: q}
}

// Xor combines two predicates; the result matches when exactly one does.
func (p *Predicate) Xor(q *Predicate) *Predicate {
	return &Predicate{op: opXor, left: p, right: q}
}

// Not returns the logical complement.
func (p *Predicate) Not() *Predicate {
	return &Predicate{op: opNot, left: p}
}

// Require is readability sugar for And, for filter chains written as a
// sequence of requirements.
func (p *Predicate) Require(q *Predicate) *Predicate { return p.And(q) }

// Exclude is sugar for AND-NOT: p.Exclude(q) matches records p matches and
// q does not.
func (p *Predicate) Exclude(q *Predicate) *Predicate { return p.And(q.Not()) }

// Eval evaluates the predicate against one record.
//
// Absence policy: a comparison on a field the record does not carry is false,
// except the negated forms (!=, !%, not in) which are true by complement.
func (p *Predicate) Eval(r *entry.Record) bool {
	switch p.op {
	case opAnd:
		return p.left.Eval(r) && p.right.Eval(r)
	case opOr:
		return p.left.Eval(r) || p.right.Eval(r)
	case opXor:
		return p.left.Eval(r) != p.right.Eval(r)
	case opNot:
		return !p.left.Eval(r)
	}

	v, ok := r.Get(p.field.name)
	if !ok {
		switch p.op {
		case opNe, opNotLike, opNotIn:
			return true
		default:
			return false
		}
	}

	switch p.op {
	case opEq:
		return v.Equal(p.operand)
	case opNe:
		return !v.Equal(p.operand)
	case opLt, opLe, opGt, opGe:
		c, ok := v.Compare(p.operand)
		if !ok {
			return false
		}
		switch p.op {
		case opLt:
			return c < 0
		case opLe:
			return c <= 0
		case opGt:
			return c > 0
		default:
			return c >= 0
		}
	case opLike:
		return v.Like(p.pattern)
	case opNotLike:
		return !v.Like(p.pattern)
	case opIn:
		return v.In(p.set)
	case opNotIn:
		return !v.In(p.set)
	default:
		return false
	}
}

// Equal reports structural equality of two predicate trees. Behaviorally
// equivalent but differently shaped trees (De Morgan rewrites, reordered
// AND operands) are not Equal.
func (p *Predicate) Equal(q *Predicate) bool {
	if p == nil || q == nil {
		return p == q
	}
	if p.op != q.op {
		return false
	}
	switch p.op {
	case opAnd, opOr, opXor:
		return p.left.Equal(q.left) && p.right.Equal(q.right)
	case opNot:
		return p.left.Equal(q.left)
	case opLike, opNotLike:
		return p.field == q.field && p.pattern == q.pattern
	case opIn, opNotIn:
		if p.field != q.field || len(p.set) != len(q.set) {
			return false
		}
		for i := range p.set {
			if !p.set[i].Equal(q.set[i]) {
				return false
			}
		}
		return true
	default:
		return p.field == q.field && p.operand.Equal(q.operand)
	}
}

// String renders the predicate for diagnostics, e.g.
// "((DPT == 25565) AND (ACTION == BLOCK))".
func (p *Predicate) String() string {
	switch p.op {
	case opAnd, opOr, opXor:
		return fmt.Sprintf("(%s %s %s)", p.left, p.op, p.right)
	case opNot:
		return fmt.Sprintf("(NOT %s)", p.left)
	case opLike, opNotLike:
		return fmt.Sprintf("(%s %s %q)", p.field.name, p.op, p.pattern)
	case opIn, opNotIn:
		items := make([]string, len(p.set))
		for i, v := range p.set {
			items[i] = v.Text()
		}
		return fmt.Sprintf("(%s %s [%s])", p.field.name, p.op, strings.Join(items, ", "))
	default:
		return fmt.Sprintf("(%s %s %s)", p.field.name, p.op, p.operand.Text())
	}
}
