package simplify

import (
	"testing"

	"github.com/pspoerri/demcontour/internal/isoline"
)

func TestPolylinesZeroToleranceIsNoop(t *testing.T) {
	in := []isoline.Polyline{{0, 0, 10, 10}}
	out := Polylines(in, 0, 4096)
	if len(out) != 1 || len(out[0]) != len(in[0]) {
		t.Fatalf("expected input unchanged, got %v", out)
	}
}

func TestPolylinesNegativeToleranceIsNoop(t *testing.T) {
	in := []isoline.Polyline{{0, 0, 10, 10}}
	out := Polylines(in, -5, 4096)
	if len(out) != 1 {
		t.Fatalf("expected input unchanged, got %v", out)
	}
}

func TestPolylinesDropsShortPolylines(t *testing.T) {
	in := []isoline.Polyline{{0, 0}} // single point, 1 vertex
	out := Polylines(in, 1, 4096)
	if len(out) != 0 {
		t.Fatalf("expected the under-length polyline to be dropped, got %v", out)
	}
}

func TestPolylinesReducesNearlyCollinearPoints(t *testing.T) {
	// A long, almost-straight line with one point barely off the
	// straight path — should collapse to its endpoints at a generous
	// tolerance.
	in := []isoline.Polyline{{0, 0, 500, 1, 1000, 0}}
	out := Polylines(in, 50, 4096)
	if len(out) != 1 {
		t.Fatalf("expected one surviving polyline, got %d", len(out))
	}
	if len(out[0])/2 >= 3 {
		t.Errorf("expected simplification to drop the near-collinear midpoint, got %v", out[0])
	}
}

func TestPolylinesPreservesSharpCorner(t *testing.T) {
	// A sharp right-angle corner should survive simplification even at a
	// moderate tolerance.
	in := []isoline.Polyline{{0, 0, 0, 2000, 2000, 2000}}
	out := Polylines(in, 10, 4096)
	if len(out) != 1 || len(out[0])/2 != 3 {
		t.Fatalf("expected the corner to survive, got %v", out)
	}
}
