package store

import (
	"fmt"
	"regexp"
	"strings"
)

type Op string

const (
	OpEq           Op = "eq"
	OpIn           Op = "in"
	OpIsNull       Op = "isNull"
	OpContainsFold Op = "containsFold"
	OpHasAny       Op = "hasAny"
)

// Condition is a single predicate over a dotted field path. Values are always
// bound as data by the backends, never spliced into query text.
type Condition struct {
	Field string
	Op    Op
	Value any
	// Values backs In and HasAny. An empty In list matches nothing.
	Values []any
	// Elem names the sub-field compared when Field is an array of objects (HasAny only).
	Elem string
}

// Filter is a conjunction of conditions. The zero Filter matches every document.
type Filter struct {
	Conditions []Condition
}

func Where(conds ...Condition) Filter {
	return Filter{Conditions: append([]Condition(nil), conds...)}
}

func ByID(id string) Filter {
	return Where(Eq(IDField, id))
}

// And returns a new filter with conds appended.
func (f Filter) And(conds ...Condition) Filter {
	out := make([]Condition, 0, len(f.Conditions)+len(conds))
	out = append(out, f.Conditions...)
	out = append(out, conds...)
	return Filter{Conditions: out}
}

// Lookup returns the first condition on field.
func (f Filter) Lookup(field string) (Condition, bool) {
	for _, c := range f.Conditions {
		if c.Field == field {
			return c, true
		}
	}
	return Condition{}, false
}

func Eq(field string, value any) Condition {
	return Condition{Field: field, Op: OpEq, Value: value}
}

func In[T any](field string, values []T) Condition {
	vs := make([]any, len(values))
	for i, v := range values {
		vs[i] = v
	}
	return Condition{Field: field, Op: OpIn, Values: vs}
}

func IsNull(field string) Condition {
	return Condition{Field: field, Op: OpIsNull}
}

// ContainsFold matches string fields containing substr, ignoring case.
func ContainsFold(field, substr string) Condition {
	return Condition{Field: field, Op: OpContainsFold, Value: substr}
}

// HasAny matches array fields holding at least one of values.
func HasAny(field string, values []string) Condition {
	return In(field, values).withOp(OpHasAny)
}

// HasAnyElem matches arrays of objects whose elem sub-field equals one of values.
func HasAnyElem(field, elem string, values []string) Condition {
	c := HasAny(field, values)
	c.Elem = elem
	return c
}

func (c Condition) withOp(op Op) Condition {
	c.Op = op
	return c
}

var fieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

func checkField(field string) error {
	if !fieldPattern.MatchString(field) {
		return fmt.Errorf("store: invalid field path %q", field)
	}
	return nil
}

// Path splits a dotted field into its segments.
func Path(field string) []string {
	return strings.Split(field, ".")
}

// Validate rejects malformed paths and operators before a backend builds a query.
func (f Filter) Validate() error {
	for _, c := range f.Conditions {
		if err := checkField(c.Field); err != nil {
			return err
		}
		switch c.Op {
		case OpEq, OpIn, OpIsNull:
		case OpContainsFold:
			if _, ok := c.Value.(string); !ok {
				return fmt.Errorf("store: %s on %q needs a string", c.Op, c.Field)
			}
		case OpHasAny:
			if c.Elem != "" {
				if err := checkField(c.Elem); err != nil {
					return err
				}
			}
		default:
			return fmt.Errorf("store: unknown operator %q", c.Op)
		}
	}
	return nil
}

func (o FindOptions) Validate() error {
	for _, s := range o.Sort {
		if err := checkField(s.Field); err != nil {
			return err
		}
	}
	if o.Skip < 0 || o.Limit < 0 {
		return fmt.Errorf("store: negative skip or limit")
	}
	return nil
}

// IsTimeField reports whether a field holds a timestamp by naming convention.
func IsTimeField(field string) bool {
	segs := Path(field)
	return strings.HasSuffix(segs[len(segs)-1], "At")
}
