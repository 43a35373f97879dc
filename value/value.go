// Package value provides primitives for coercing and rendering scalar
// values from heterogeneous metadata sources.
//
// DataCite JSON in the wild is loose about scalar types (publication years
// arrive as numbers or strings, sizes as either), and CSV cells carry
// European decimal commas. These helpers normalize all of that at the
// parsing edges so the graph stores canonical values.
package value

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Text renders a decoded scalar as a string. Whole-number floats render
// without a fraction, so a year decoded from JSON as 2021.0 comes back
// as "2021".
func Text(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		if i := int64(val); float64(i) == val {
			return strconv.FormatInt(i, 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

// Int coerces a decoded scalar to an int. Unparseable input yields 0;
// callers that need the distinction validate the text form first.
func Int(v any) int {
	switch val := v.(type) {
	case int:
		return val
	case float64:
		return int(val)
	case json.Number:
		i, _ := val.Int64()
		return int(i)
	case string:
		i, _ := strconv.Atoi(strings.TrimSpace(val))
		return i
	default:
		return 0
	}
}

// Float coerces a decoded scalar to a float64. Unparseable input yields 0.
func Float(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case json.Number:
		f, _ := val.Float64()
		return f
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return f
	default:
		return 0
	}
}
