package main

import "testing"

func TestApiLayerPropertyCountZeroCapacitySucceedsWithoutWriting(t *testing.T) {
	count, writeProperties := apiLayerPropertyCount(0)
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
	if writeProperties {
		t.Fatal("expected writeProperties=false for a zero-capacity query")
	}
}

func TestApiLayerPropertyCountNonZeroCapacityWrites(t *testing.T) {
	count, writeProperties := apiLayerPropertyCount(4)
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
	if !writeProperties {
		t.Fatal("expected writeProperties=true for a nonzero-capacity query")
	}
}

func TestEnumerateInstanceExtensionsIsSelf(t *testing.T) {
	if !enumerateInstanceExtensionsIsSelf(layerName) {
		t.Fatal("expected true when the requested layer name matches this layer")
	}
	if enumerateInstanceExtensionsIsSelf("") {
		t.Fatal("expected false for an empty (generic) layer name")
	}
	if enumerateInstanceExtensionsIsSelf("XR_APILAYER_some_other_layer") {
		t.Fatal("expected false for a different layer's name")
	}
}

func TestWriteCStringTruncatesAndTerminates(t *testing.T) {
	dst := make([]C.char, 4)
	writeCString(dst, "hello")
	if dst[3] != 0 {
		t.Fatalf("expected NUL terminator at end, got %v", dst[3])
	}
	for i := 0; i < 3; i++ {
		if byte(dst[i]) != "hel"[i] {
			t.Fatalf("dst[%d] = %q, want %q", i, byte(dst[i]), "hel"[i])
		}
	}
}

func TestWriteCStringPadsShortStrings(t *testing.T) {
	dst := make([]C.char, 8)
	writeCString(dst, "ab")
	want := "ab\x00\x00\x00\x00\x00\x00"
	for i := range dst {
		if byte(dst[i]) != want[i] {
			t.Fatalf("dst[%d] = %v, want %v", i, dst[i], want[i])
		}
	}
}
