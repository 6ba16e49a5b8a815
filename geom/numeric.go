package geom

import "fmt"

// Numeric is the set of element types Size, Point and Rect can be
// instantiated over.
type Numeric interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~float32 | ~float64
}

// NumericCastRangeError is returned when converting a geometry value
// between numeric representations would overflow or underflow the
// target type.
type NumericCastRangeError struct {
	Value      float64
	TargetType string
	Min, Max   float64
}

func (e *NumericCastRangeError) Error() string {
	return fmt.Sprintf(
		"geom: value %v out of range for %s (min %v, max %v)",
		e.Value, e.TargetType, e.Min, e.Max)
}

// bounds reports the representable range of T as float64s, and T's
// type name for error messages.
func bounds[T Numeric]() (name string, min, max float64) {
	switch any(T(0)).(type) {
	case int8:
		return "int8", -128, 127
	case int16:
		return "int16", -32768, 32767
	case int32:
		return "int32", -2147483648, 2147483647
	case int64, int:
		return "int64", -9223372036854775808, 9223372036854775807
	case uint8:
		return "uint8", 0, 255
	case uint16:
		return "uint16", 0, 65535
	case uint32:
		return "uint32", 0, 4294967295
	case uint64, uint:
		return "uint64", 0, 18446744073709551615
	case float32:
		return "float32", -3.4028235e38, 3.4028235e38
	default:
		return "float64", -1.7976931348623157e308, 1.7976931348623157e308
	}
}

// NumericCast converts v (of type From) to To, returning a
// *NumericCastRangeError if the result would overflow or underflow To's
// range. Non-integral input to an integer target is not rejected: it is
// truncated toward zero by Go's conversion rules.
func NumericCast[To, From Numeric](v From) (To, error) {
	f := float64(v)
	name, min, max := bounds[To]()
	if f < min || f > max {
		return 0, &NumericCastRangeError{Value: f, TargetType: name, Min: min, Max: max}
	}
	return To(v), nil
}
