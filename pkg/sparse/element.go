package sparse

import (
	"fmt"
	"math"

	"github.com/x448/float16"
)

// Element is the set of value types a matrix can hold.
type Element interface {
	float16.Float16 | float32 | float64 | int8 | uint8 | int32 | uint32
}

// FromFloat64 converts v to T, rounding to the nearest half-precision value
// for float16.Float16. Integer kinds only accept whole numbers within their
// range.
func FromFloat64[T Element](v float64) (T, error) {
	var zero T
	var lo, hi float64
	switch any(zero).(type) {
	case float16.Float16:
		return any(float16.Fromfloat32(float32(v))).(T), nil
	case float32, float64:
		return T(v), nil
	case int8:
		lo, hi = math.MinInt8, math.MaxInt8
	case uint8:
		lo, hi = 0, math.MaxUint8
	case int32:
		lo, hi = math.MinInt32, math.MaxInt32
	case uint32:
		lo, hi = 0, math.MaxUint32
	}
	if v != math.Trunc(v) {
		return zero, fmt.Errorf("%s value %v is not a whole number", ElementName[T](), v)
	}
	if v < lo || v > hi {
		return zero, fmt.Errorf("%s value %v is out of range", ElementName[T](), v)
	}
	return T(v), nil
}

func ToFloat64[T Element](v T) float64 {
	if h, ok := any(v).(float16.Float16); ok {
		return float64(h.Float32())
	}
	return float64(v)
}

// ElementName returns the document name of T, e.g. "float32".
func ElementName[T Element]() string {
	var zero T
	switch any(zero).(type) {
	case float16.Float16:
		return "float16"
	case float32:
		return "float32"
	case float64:
		return "float64"
	case int8:
		return "int8"
	case uint8:
		return "uint8"
	case int32:
		return "int32"
	case uint32:
		return "uint32"
	}
	panic(fmt.Sprintf("unhandled element type %T", zero))
}
