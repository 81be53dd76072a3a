package floe

import (
	"fmt"
	"strings"
)

// Field is a single named, identified column. IDs come from the table
// metadata and stay stable across renames.
type Field struct {
	ID   int
	Name string
	Type Type
}

type Schema struct {
	Fields []Field
}

func NewSchema(fields ...Field) Schema {
	return Schema{Fields: fields}
}

func (s Schema) Len() int {
	return len(s.Fields)
}

// IndexOf returns the position of the field with the given name, or -1.
func (s Schema) IndexOf(name string, caseSensitive bool) int {
	for i := range s.Fields {
		if nameEquals(s.Fields[i].Name, name, caseSensitive) {
			return i
		}
	}
	return -1
}

func (s Schema) FieldByID(id int) (Field, bool) {
	for i := range s.Fields {
		if s.Fields[i].ID == id {
			return s.Fields[i], true
		}
	}
	return Field{}, false
}

// Select keeps the fields whose ids are in the given set, preserving order.
func (s Schema) Select(ids map[int]struct{}) Schema {
	out := make([]Field, 0, len(s.Fields))
	for _, field := range s.Fields {
		if _, ok := ids[field.ID]; ok {
			out = append(out, field)
		}
	}
	return Schema{Fields: out}
}

// SelectNot keeps the fields whose ids are not in the given set.
func (s Schema) SelectNot(ids map[int]struct{}) Schema {
	out := make([]Field, 0, len(s.Fields))
	for _, field := range s.Fields {
		if _, ok := ids[field.ID]; !ok {
			out = append(out, field)
		}
	}
	return Schema{Fields: out}
}

// Join concatenates two schemas. Duplicate names would make the final
// name-matched projection ambiguous, so they're rejected.
func (s Schema) Join(other Schema) (Schema, error) {
	out := make([]Field, 0, len(s.Fields)+len(other.Fields))
	out = append(out, s.Fields...)
	for _, field := range other.Fields {
		if s.IndexOf(field.Name, true) != -1 {
			return Schema{}, fmt.Errorf("duplicate field name '%s' when joining schemas", field.Name)
		}
		out = append(out, field)
	}
	return Schema{Fields: out}, nil
}

// Prune projects s down to the fields that appear in requested by name, plus
// any extra columns named in referenced (residual predicate columns not part
// of the requested output). Field order follows s, so pruning the table
// schema always yields columns in table-schema order.
func (s Schema) Prune(requested Schema, referenced []string, caseSensitive bool) Schema {
	needed := func(name string) bool {
		if requested.IndexOf(name, caseSensitive) != -1 {
			return true
		}
		for _, ref := range referenced {
			if nameEquals(name, ref, caseSensitive) {
				return true
			}
		}
		return false
	}

	out := make([]Field, 0, len(requested.Fields))
	for _, field := range s.Fields {
		if needed(field.Name) {
			out = append(out, field)
		}
	}
	return Schema{Fields: out}
}

func (s Schema) Equals(other Schema) bool {
	if len(s.Fields) != len(other.Fields) {
		return false
	}
	for i := range s.Fields {
		if s.Fields[i].ID != other.Fields[i].ID ||
			s.Fields[i].Name != other.Fields[i].Name ||
			!s.Fields[i].Type.Equals(other.Fields[i].Type) {
			return false
		}
	}
	return true
}

func (s Schema) String() string {
	parts := make([]string, len(s.Fields))
	for i, field := range s.Fields {
		parts[i] = fmt.Sprintf("%d: %s %s", field.ID, field.Name, field.Type)
	}
	return "struct<" + strings.Join(parts, ", ") + ">"
}

func nameEquals(a, b string, caseSensitive bool) bool {
	if caseSensitive {
		return a == b
	}
	return strings.EqualFold(a, b)
}
