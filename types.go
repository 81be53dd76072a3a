package floe

import (
	"fmt"
)

type TypeID int

const (
	TypeIDNull TypeID = iota
	TypeIDBoolean
	TypeIDInt
	TypeIDFloat
	TypeIDDecimal
	TypeIDString
	TypeIDBytes
	TypeIDTime
)

// Type describes the logical type of a column or value. Decimal carries the
// scale values of that column are normalized to.
type Type struct {
	TypeID TypeID
	Scale  int32
}

var (
	Null    = Type{TypeID: TypeIDNull}
	Boolean = Type{TypeID: TypeIDBoolean}
	Int     = Type{TypeID: TypeIDInt}
	Float   = Type{TypeID: TypeIDFloat}
	String  = Type{TypeID: TypeIDString}
	Bytes   = Type{TypeID: TypeIDBytes}
	Time    = Type{TypeID: TypeIDTime}
)

func Decimal(scale int32) Type {
	return Type{TypeID: TypeIDDecimal, Scale: scale}
}

func (t Type) Equals(other Type) bool {
	return t.TypeID == other.TypeID && t.Scale == other.Scale
}

func (t Type) String() string {
	switch t.TypeID {
	case TypeIDNull:
		return "Null"
	case TypeIDBoolean:
		return "Boolean"
	case TypeIDInt:
		return "Int"
	case TypeIDFloat:
		return "Float"
	case TypeIDDecimal:
		return fmt.Sprintf("Decimal(%d)", t.Scale)
	case TypeIDString:
		return "String"
	case TypeIDBytes:
		return "Bytes"
	case TypeIDTime:
		return "Time"
	}
	panic("invalid type")
}
