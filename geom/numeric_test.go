package geom

import (
	"errors"
	"testing"
)

func TestNumericCastInRange(t *testing.T) {
	got, err := NumericCast[uint32](int64(42))
	if err != nil {
		t.Fatalf("NumericCast() error = %v", err)
	}
	if got != 42 {
		t.Errorf("NumericCast() = %d, want 42", got)
	}
}

func TestNumericCastOutOfRange(t *testing.T) {
	_, err := NumericCast[uint32](int64(-1))
	if err == nil {
		t.Fatal("expected NumericCastRangeError for negative value cast to uint32")
	}
	var rangeErr *NumericCastRangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("expected *NumericCastRangeError, got %T", err)
	}
	if rangeErr.TargetType != "uint32" {
		t.Errorf("TargetType = %q, want uint32", rangeErr.TargetType)
	}
}

func TestNumericCastOverflowsUint8(t *testing.T) {
	_, err := NumericCast[uint8](int64(256))
	if err == nil {
		t.Fatal("expected range error for 256 -> uint8")
	}
}
