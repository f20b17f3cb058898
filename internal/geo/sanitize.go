package geo

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/iancoleman/orderedmap"
)

// jsonSafe returns v in a form encoding/json can always represent,
// falling back to a string for anything else.
func jsonSafe(v interface{}) interface{} {
	switch t := v.(type) {
	case nil, bool, string, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return t

	case float64:
		return safeFloat(t)

	case float32:
		return safeFloat(float64(t))

	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = jsonSafe(e)
		}
		return out

	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, e := range t {
			out[k] = jsonSafe(e)
		}
		return out

	case orderedmap.OrderedMap:
		return *safeProperties(&t)

	case *orderedmap.OrderedMap:
		return safeProperties(t)

	case time.Time:
		return t.Format(time.RFC3339Nano)

	case fmt.Stringer:
		return t.String()

	default:
		if _, err := json.Marshal(t); err == nil {
			return t
		}
		return fmt.Sprint(t)
	}
}

func safeFloat(f float64) interface{} {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return f
}

// safeProperties returns a copy of props with every value passed through
// jsonSafe. Key order is kept.
func safeProperties(props *orderedmap.OrderedMap) *orderedmap.OrderedMap {
	if props == nil {
		return nil
	}

	out := orderedmap.New()
	out.SetEscapeHTML(false)
	for _, k := range props.Keys() {
		v, _ := props.Get(k)
		out.Set(k, jsonSafe(v))
	}
	return out
}
