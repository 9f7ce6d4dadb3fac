package loader

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Normalize converts value into the plain maps, slices and scalars that
// expression evaluation understands. Structs go through their JSON form, so
// json tags apply; maps and scalars are returned unchanged.
func Normalize(value any) (any, error) {
	if value == nil {
		return nil, nil
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() { //nolint:exhaustive // remaining kinds go through JSON
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Map:
		return value, nil
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			v, err := Normalize(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("element [%d]: %w", i, err)
			}
			out[i] = v
		}
		return out, nil
	default:
		data, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("normalize %T: %w", value, err)
		}
		var out any
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("normalize %T: %w", value, err)
		}
		return out, nil
	}
}
