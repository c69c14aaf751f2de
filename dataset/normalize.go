/*
Copyright 2025 The ClimateTools Authors
SPDX-License-Identifier: Apache-2.0
*/

package dataset

import (
	"fmt"
	"math"
	"reflect"
	"time"
)

// timeLayout is the representation of timestamps in normalized results.
const timeLayout = "2006-01-02 15:04:05"

// Normalize recursively converts a tool result into JSON-safe values:
// NaN and infinities become nil, timestamps become strings, numeric
// widths collapse to int and float64, and maps and slices are rebuilt
// with normalized contents. Normalizing an already-normalized structure
// returns an equal structure.
func Normalize(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case bool, string:
		return val
	case int:
		return val
	case int8, int16, int32, int64:
		return int(reflect.ValueOf(val).Int())
	case uint, uint8, uint16, uint32, uint64:
		return int(reflect.ValueOf(val).Uint())
	case float32:
		return normalizeFloat(float64(val))
	case float64:
		return normalizeFloat(val)
	case time.Time:
		if val.IsZero() {
			return nil
		}
		return val.Format(timeLayout)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = Normalize(iter.Value().Interface())
		}
		return out
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = Normalize(rv.Index(i).Interface())
		}
		return out
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return Normalize(rv.Elem().Interface())
	}

	// Anything unrecognized is rendered as a string rather than risking
	// a marshalling failure downstream.
	return fmt.Sprint(v)
}

func normalizeFloat(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}
