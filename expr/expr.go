// Package expr holds the predicate algebra used for scan filters and the
// residuals left over after file-level pruning.
package expr

import (
	"fmt"
	"strings"

	"github.com/floedb/floe"
)

// ValueGetter resolves a column name to its value in the row under
// evaluation. The second return is false when the column doesn't exist.
type ValueGetter func(column string) (floe.Value, bool)

// Expression is a boolean predicate over one row. String must be stable and
// deterministic: it takes part in the planning cache key.
type Expression interface {
	fmt.Stringer
	// References returns the column names the predicate reads.
	References() []string
	// Matches evaluates the predicate against one row.
	Matches(get ValueGetter) (bool, error)
}

type Relation string

const (
	RelationEqual        Relation = "="
	RelationNotEqual     Relation = "!="
	RelationLessThan     Relation = "<"
	RelationLessEqual    Relation = "<="
	RelationGreaterThan  Relation = ">"
	RelationGreaterEqual Relation = ">="
)

type predicate struct {
	column   string
	relation Relation
	value    floe.Value
}

func newPredicate(column string, relation Relation, value floe.Value) Expression {
	return &predicate{column: column, relation: relation, value: value}
}

func Equal(column string, value floe.Value) Expression {
	return newPredicate(column, RelationEqual, value)
}

func NotEqual(column string, value floe.Value) Expression {
	return newPredicate(column, RelationNotEqual, value)
}

func LessThan(column string, value floe.Value) Expression {
	return newPredicate(column, RelationLessThan, value)
}

func LessEqual(column string, value floe.Value) Expression {
	return newPredicate(column, RelationLessEqual, value)
}

func GreaterThan(column string, value floe.Value) Expression {
	return newPredicate(column, RelationGreaterThan, value)
}

func GreaterEqual(column string, value floe.Value) Expression {
	return newPredicate(column, RelationGreaterEqual, value)
}

func (p *predicate) References() []string {
	return []string{p.column}
}

func (p *predicate) Matches(get ValueGetter) (bool, error) {
	value, ok := get(p.column)
	if !ok {
		return false, fmt.Errorf("column '%s' referenced by predicate is not present in the row", p.column)
	}
	if value.IsNull() {
		// Comparisons against null never match; IsNull is the way to ask.
		return false, nil
	}
	cmp := value.Compare(p.value)
	switch p.relation {
	case RelationEqual:
		return cmp == 0, nil
	case RelationNotEqual:
		return cmp != 0, nil
	case RelationLessThan:
		return cmp < 0, nil
	case RelationLessEqual:
		return cmp <= 0, nil
	case RelationGreaterThan:
		return cmp > 0, nil
	case RelationGreaterEqual:
		return cmp >= 0, nil
	}
	return false, fmt.Errorf("unknown relation '%s'", p.relation)
}

func (p *predicate) String() string {
	return fmt.Sprintf("%s %s %s", p.column, p.relation, p.value)
}

type isNull struct {
	column string
}

func IsNull(column string) Expression {
	return &isNull{column: column}
}

func (p *isNull) References() []string {
	return []string{p.column}
}

func (p *isNull) Matches(get ValueGetter) (bool, error) {
	value, ok := get(p.column)
	if !ok {
		return false, fmt.Errorf("column '%s' referenced by predicate is not present in the row", p.column)
	}
	return value.IsNull(), nil
}

func (p *isNull) String() string {
	return fmt.Sprintf("%s is null", p.column)
}

type and struct {
	operands []Expression
}

func And(operands ...Expression) Expression {
	if len(operands) == 1 {
		return operands[0]
	}
	return &and{operands: operands}
}

func (f *and) References() []string {
	return childReferences(f.operands)
}

func (f *and) Matches(get ValueGetter) (bool, error) {
	for _, operand := range f.operands {
		ok, err := operand.Matches(get)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (f *and) String() string {
	return joinOperands(f.operands, " and ")
}

type or struct {
	operands []Expression
}

func Or(operands ...Expression) Expression {
	if len(operands) == 1 {
		return operands[0]
	}
	return &or{operands: operands}
}

func (f *or) References() []string {
	return childReferences(f.operands)
}

func (f *or) Matches(get ValueGetter) (bool, error) {
	for _, operand := range f.operands {
		ok, err := operand.Matches(get)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (f *or) String() string {
	return joinOperands(f.operands, " or ")
}

type not struct {
	operand Expression
}

func Not(operand Expression) Expression {
	return &not{operand: operand}
}

func (f *not) References() []string {
	return f.operand.References()
}

func (f *not) Matches(get ValueGetter) (bool, error) {
	ok, err := f.operand.Matches(get)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

func (f *not) String() string {
	return fmt.Sprintf("not (%s)", f.operand)
}

type constant bool

// AlwaysTrue matches every row. Planners hand it out as the residual of
// tasks whose filter was fully resolved by file-level pruning.
func AlwaysTrue() Expression {
	return constant(true)
}

func AlwaysFalse() Expression {
	return constant(false)
}

func (c constant) References() []string {
	return nil
}

func (c constant) Matches(ValueGetter) (bool, error) {
	return bool(c), nil
}

func (c constant) String() string {
	if c {
		return "true"
	}
	return "false"
}

// IsAlwaysTrue reports whether e is the trivial residual.
func IsAlwaysTrue(e Expression) bool {
	c, ok := e.(constant)
	return ok && bool(c)
}

func childReferences(operands []Expression) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, operand := range operands {
		for _, ref := range operand.References() {
			if _, ok := seen[ref]; !ok {
				seen[ref] = struct{}{}
				out = append(out, ref)
			}
		}
	}
	return out
}

func joinOperands(operands []Expression, sep string) string {
	parts := make([]string, len(operands))
	for i := range operands {
		parts[i] = operands[i].String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}
