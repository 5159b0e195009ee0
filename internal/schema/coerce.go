package schema

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Lumos-Labs-HQ/starseed/internal/apperrors"
)

// Coercer converts a generated value into the column's declared type.
// nil values pass through unchanged.
type Coercer func(any) (any, error)

var coercers = map[string]Coercer{
	"string":    ToString,
	"text":      ToString,
	"int":       ToInt,
	"integer":   ToInt,
	"float":     ToFloat,
	"real":      ToFloat,
	"bool":      ToBool,
	"boolean":   ToBool,
	"timestamp": ToTimestamp,
	"datetime":  ToTimestamp,
	"date":      ToDate,
}

// LookupCoercer resolves a declared type name to its coercer.
func LookupCoercer(name string) (Coercer, error) {
	c, ok := coercers[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, apperrors.Configf("unknown column type %q", name)
	}
	return c, nil
}

// TimeLayouts are tried in order when parsing timestamps from strings.
var TimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func ToString(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		return t, nil
	case time.Time:
		return t.Format("2006-01-02 15:04:05"), nil
	case fmt.Stringer:
		return t.String(), nil
	default:
		return fmt.Sprint(t), nil
	}
}

func ToInt(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case int:
		return t, nil
	case int8:
		return int(t), nil
	case int16:
		return int(t), nil
	case int32:
		return int(t), nil
	case int64:
		return int(t), nil
	case uint:
		return int(t), nil
	case uint8:
		return int(t), nil
	case uint16:
		return int(t), nil
	case uint32:
		return int(t), nil
	case uint64:
		return int(t), nil
	case float32:
		return int(math.Trunc(float64(t))), nil
	case float64:
		return int(math.Trunc(t)), nil
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return nil, fmt.Errorf("cannot convert %q to int", t)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("cannot convert %T to int", v)
	}
}

func ToFloat(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int32:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case bool:
		if t {
			return 1.0, nil
		}
		return 0.0, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil, fmt.Errorf("cannot convert %q to float", t)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("cannot convert %T to float", v)
	}
}

func ToBool(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case bool:
		return t, nil
	case int:
		return t != 0, nil
	case int64:
		return t != 0, nil
	case float64:
		return t != 0, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		if err != nil {
			return nil, fmt.Errorf("cannot convert %q to bool", t)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("cannot convert %T to bool", v)
	}
}

func ToTimestamp(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return t, nil
	case int64:
		return time.Unix(t, 0).UTC(), nil
	case int:
		return time.Unix(int64(t), 0).UTC(), nil
	case string:
		ts, err := ParseTime(t)
		if err != nil {
			return nil, err
		}
		return ts, nil
	default:
		return nil, fmt.Errorf("cannot convert %T to timestamp", v)
	}
}

func ToDate(v any) (any, error) {
	ts, err := ToTimestamp(v)
	if err != nil || ts == nil {
		return ts, err
	}
	t := ts.(time.Time)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()), nil
}

// ParseTime parses s with the first matching layout of TimeLayouts.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range TimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as a timestamp", s)
}
