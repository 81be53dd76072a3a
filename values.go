package floe

import (
	"bytes"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var ZeroValue = Value{}

// Value is a single typed datum. Only the field corresponding to the TypeID
// is meaningful.
type Value struct {
	TypeID  TypeID
	Boolean bool
	Int     int64
	Float   float64
	Decimal decimal.Decimal
	Str     string
	Bytes   []byte
	Time    time.Time
}

func NewNull() Value {
	return Value{TypeID: TypeIDNull}
}

func NewBoolean(v bool) Value {
	return Value{TypeID: TypeIDBoolean, Boolean: v}
}

func NewInt(v int64) Value {
	return Value{TypeID: TypeIDInt, Int: v}
}

func NewFloat(v float64) Value {
	return Value{TypeID: TypeIDFloat, Float: v}
}

func NewDecimal(v decimal.Decimal) Value {
	return Value{TypeID: TypeIDDecimal, Decimal: v}
}

func NewString(v string) Value {
	return Value{TypeID: TypeIDString, Str: v}
}

func NewBytes(v []byte) Value {
	return Value{TypeID: TypeIDBytes, Bytes: v}
}

func NewTime(v time.Time) Value {
	return Value{TypeID: TypeIDTime, Time: v}
}

func (value Value) IsNull() bool {
	return value.TypeID == TypeIDNull
}

// Compare orders values of the same kind. Null sorts before everything else.
// Values of different non-null kinds compare by kind, so sorting mixed
// values is stable even though it carries no meaning.
func (value Value) Compare(other Value) int {
	if value.TypeID != other.TypeID {
		if value.TypeID < other.TypeID {
			return -1
		}
		return 1
	}

	switch value.TypeID {
	case TypeIDNull:
		return 0
	case TypeIDBoolean:
		if value.Boolean == other.Boolean {
			return 0
		} else if !value.Boolean {
			return -1
		}
		return 1
	case TypeIDInt:
		if value.Int < other.Int {
			return -1
		} else if value.Int > other.Int {
			return 1
		}
		return 0
	case TypeIDFloat:
		if value.Float < other.Float {
			return -1
		} else if value.Float > other.Float {
			return 1
		}
		return 0
	case TypeIDDecimal:
		return value.Decimal.Cmp(other.Decimal)
	case TypeIDString:
		if value.Str < other.Str {
			return -1
		} else if value.Str > other.Str {
			return 1
		}
		return 0
	case TypeIDBytes:
		return bytes.Compare(value.Bytes, other.Bytes)
	case TypeIDTime:
		if value.Time.Before(other.Time) {
			return -1
		} else if value.Time.After(other.Time) {
			return 1
		}
		return 0
	}
	panic("invalid value type")
}

func (value Value) Equals(other Value) bool {
	return value.Compare(other) == 0
}

func (value Value) String() string {
	switch value.TypeID {
	case TypeIDNull:
		return "<null>"
	case TypeIDBoolean:
		return fmt.Sprintf("%t", value.Boolean)
	case TypeIDInt:
		return fmt.Sprintf("%d", value.Int)
	case TypeIDFloat:
		return fmt.Sprintf("%g", value.Float)
	case TypeIDDecimal:
		return value.Decimal.String()
	case TypeIDString:
		return fmt.Sprintf("'%s'", value.Str)
	case TypeIDBytes:
		return fmt.Sprintf("0x%x", value.Bytes)
	case TypeIDTime:
		return value.Time.Format(time.RFC3339Nano)
	}
	panic("invalid value type")
}
