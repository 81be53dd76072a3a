package formats

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/floedb/floe"
)

func nameEquals(a, b string, caseSensitive bool) bool {
	if caseSensitive {
		return a == b
	}
	return strings.EqualFold(a, b)
}

func microsToTime(micros int64) time.Time {
	return time.Unix(micros/1_000_000, (micros%1_000_000)*1_000).UTC()
}

// parseTextValue decodes one textual field into the target type. The empty
// string reads as null, matching how partitioned text files encode absent
// values.
func parseTextValue(text string, t floe.Type) (floe.Value, error) {
	if text == "" {
		return floe.NewNull(), nil
	}

	switch t.TypeID {
	case floe.TypeIDBoolean:
		v, err := strconv.ParseBool(text)
		if err != nil {
			return floe.Value{}, fmt.Errorf("couldn't parse '%s' as boolean: %w", text, err)
		}
		return floe.NewBoolean(v), nil
	case floe.TypeIDInt:
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return floe.Value{}, fmt.Errorf("couldn't parse '%s' as int: %w", text, err)
		}
		return floe.NewInt(v), nil
	case floe.TypeIDFloat:
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return floe.Value{}, fmt.Errorf("couldn't parse '%s' as float: %w", text, err)
		}
		return floe.NewFloat(v), nil
	case floe.TypeIDDecimal:
		v, err := decimal.NewFromString(text)
		if err != nil {
			return floe.Value{}, fmt.Errorf("couldn't parse '%s' as decimal: %w", text, err)
		}
		return floe.NewDecimal(v), nil
	case floe.TypeIDString:
		return floe.NewString(text), nil
	case floe.TypeIDBytes:
		return floe.NewBytes([]byte(text)), nil
	case floe.TypeIDTime:
		v, err := time.Parse(time.RFC3339Nano, text)
		if err != nil {
			return floe.Value{}, fmt.Errorf("couldn't parse '%s' as time: %w", text, err)
		}
		return floe.NewTime(v), nil
	}
	return floe.Value{}, fmt.Errorf("cannot parse text value as %s", t)
}
