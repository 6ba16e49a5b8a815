package geom

import "testing"

func TestSizeScaledToFit(t *testing.T) {
	tests := []struct {
		name       string
		src, outer Size[float64]
		want       Size[float64]
	}{
		{"same aspect", Sz(100.0, 100.0), Sz(200.0, 200.0), Sz(200.0, 200.0)},
		{"wider than tall", Sz(200.0, 100.0), Sz(100.0, 100.0), Sz(100.0, 50.0)},
		{"taller than wide", Sz(100.0, 200.0), Sz(100.0, 100.0), Sz(50.0, 100.0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.src.ScaledToFit(tt.outer)
			if got != tt.want {
				t.Errorf("ScaledToFit() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSizeIsDegenerate(t *testing.T) {
	if !(Size[int]{Width: 0, Height: 10}).IsDegenerate() {
		t.Error("zero width should be degenerate")
	}
	if (Size[int]{Width: 5, Height: 5}).IsDegenerate() {
		t.Error("positive size should not be degenerate")
	}
}

func TestRounded(t *testing.T) {
	s := Size[float64]{Width: 10.6, Height: 10.4}
	got := Rounded[uint32](s)
	want := Size[uint32]{Width: 11, Height: 10}
	if got != want {
		t.Errorf("Rounded() = %+v, want %+v", got, want)
	}
}
