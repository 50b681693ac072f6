package coord

import "testing"

func TestWrapX(t *testing.T) {
	tests := []struct {
		name string
		x, z int
		want int
	}{
		{"in range", 3, 3, 3},
		{"negative wraps", -1, 3, 7},
		{"overflow wraps", 8, 3, 0},
		{"zoom zero", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WrapX(tt.x, tt.z); got != tt.want {
				t.Errorf("WrapX(%d, %d) = %d, want %d", tt.x, tt.z, got, tt.want)
			}
		})
	}
}

func TestInYRange(t *testing.T) {
	if !InYRange(0, 2) || !InYRange(3, 2) {
		t.Error("boundary rows should be in range")
	}
	if InYRange(-1, 2) || InYRange(4, 2) {
		t.Error("out-of-range rows should not be in range")
	}
}

func TestAncestor(t *testing.T) {
	anc, subZ, subX, subY := Ancestor(12, 2200, 1343, 2, -1)
	if anc.Z != 10 {
		t.Fatalf("ancestor zoom = %d, want 10", anc.Z)
	}
	if anc.X != 2200>>2 || anc.Y != 1343>>2 {
		t.Fatalf("ancestor xy = (%d,%d), want (%d,%d)", anc.X, anc.Y, 2200>>2, 1343>>2)
	}
	if subZ != 2 {
		t.Fatalf("subZ = %d, want 2", subZ)
	}
	if subX != 2200&3 || subY != 1343&3 {
		t.Fatalf("sub xy = (%d,%d), want (%d,%d)", subX, subY, 2200&3, 1343&3)
	}
}

func TestAncestorClampsToMaxZoom(t *testing.T) {
	anc, _, _, _ := Ancestor(5, 10, 10, 10, 3)
	if anc.Z != 3 {
		t.Fatalf("ancestor zoom = %d, want clamped to maxZoom 3", anc.Z)
	}
}

func TestAncestorZeroOverzoom(t *testing.T) {
	anc, subZ, subX, subY := Ancestor(8, 100, 50, 0, -1)
	if anc != (Tile{Z: 8, X: 100, Y: 50}) {
		t.Fatalf("zero overzoom ancestor should equal the tile itself, got %+v", anc)
	}
	if subZ != 0 || subX != 0 || subY != 0 {
		t.Fatalf("zero overzoom sub-coords should be zero, got (%d,%d,%d)", subZ, subX, subY)
	}
}

func TestNeighbors9CenterAndWrap(t *testing.T) {
	tiles, ok := Neighbors9(Tile{Z: 3, X: 0, Y: 7})
	if tiles[4] != (Tile{Z: 3, X: 0, Y: 7}) {
		t.Fatalf("center neighbor = %+v, want the input tile", tiles[4])
	}
	// West of x=0 at z=3 wraps to x=7.
	if tiles[3].X != 7 {
		t.Fatalf("west neighbor X = %d, want wrap to 7", tiles[3].X)
	}
	// South of y=7 (max row at z=3) is out of range.
	if ok[7] {
		t.Fatalf("south neighbor should be out of Y range")
	}
}
