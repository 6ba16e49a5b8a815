package geom

import "testing"

func TestRectHalfOpen(t *testing.T) {
	r := RectFromLTWH[uint32](10, 20, 100, 50)
	if r.Right() != 110 {
		t.Errorf("Right() = %d, want 110", r.Right())
	}
	if r.Bottom() != 70 {
		t.Errorf("Bottom() = %d, want 70", r.Bottom())
	}
}

func TestRectWithinBounds(t *testing.T) {
	texture := RectFromLTWH[uint32](0, 0, 1024, 1024)
	layer := RectFromLTWH[uint32](512, 0, 512, 512)
	if !layer.WithinBounds(texture) {
		t.Error("layer rect should lie within texture bounds")
	}

	overflow := RectFromLTWH[uint32](600, 0, 512, 512)
	if overflow.WithinBounds(texture) {
		t.Error("overflowing rect should not be within texture bounds")
	}
}

func TestRectIntersection(t *testing.T) {
	a := RectFromLTWH[int](0, 0, 10, 10)
	b := RectFromLTWH[int](5, 5, 10, 10)
	got, ok := a.Intersection(b)
	if !ok {
		t.Fatal("expected intersection")
	}
	want := RectFromLTWH[int](5, 5, 5, 5)
	if got != want {
		t.Errorf("Intersection() = %+v, want %+v", got, want)
	}

	c := RectFromLTWH[int](20, 20, 5, 5)
	if _, ok := a.Intersection(c); ok {
		t.Error("expected no intersection")
	}
}

func TestRectContainsPoint(t *testing.T) {
	r := RectFromLTWH[int](0, 0, 10, 10)
	if !r.ContainsPoint(Pt(0, 0)) {
		t.Error("origin should be contained (half-open, inclusive left/top)")
	}
	if r.ContainsPoint(Pt(10, 5)) {
		t.Error("right edge should be excluded (half-open)")
	}
}
