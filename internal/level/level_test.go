package level

import (
	"testing"

	"github.com/Technochips/chipscraft/internal/blockdef"
)

func newTestLevel(t *testing.T, x, y, z int16) *Level {
	t.Helper()
	l := New("test")
	if err := l.Generate(x, y, z, Empty, 1); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return l
}

func TestGetSetBlockRoundTrip(t *testing.T) {
	l := newTestLevel(t, 4, 4, 4)
	l.SetBlock(1, 2, 3, blockdef.Stone)
	if got := l.GetBlock(1, 2, 3); got != blockdef.Stone {
		t.Fatalf("GetBlock = %v, want Stone", got)
	}
	if !l.Changed {
		t.Fatalf("expected Changed to be set after SetBlock")
	}
}

func TestPlaceBlockPlainWrite(t *testing.T) {
	l := newTestLevel(t, 4, 4, 4)
	changes := l.PlaceBlock(0, 0, 0, blockdef.Stone)
	if len(changes) != 1 || changes[0].Block != blockdef.Stone {
		t.Fatalf("PlaceBlock = %+v, want single Stone write", changes)
	}
	if l.GetBlock(0, 0, 0) != blockdef.Stone {
		t.Fatalf("block not written")
	}
}

// Placing a slab on top of a matching slab must merge into a double slab
// at the lower cell, not stack two single slabs.
func TestPlaceBlockSlabStacking(t *testing.T) {
	l := newTestLevel(t, 4, 4, 4)
	l.PlaceBlock(0, 0, 0, blockdef.Slab)
	changes := l.PlaceBlock(0, 1, 0, blockdef.Slab)

	if len(changes) != 1 {
		t.Fatalf("expected one change, got %+v", changes)
	}
	if changes[0].Y != 0 || changes[0].Block != blockdef.DoubleSlab {
		t.Fatalf("expected double slab written at y=0, got %+v", changes[0])
	}
	if l.GetBlock(0, 0, 0) != blockdef.DoubleSlab {
		t.Fatalf("base cell is %v, want DoubleSlab", l.GetBlock(0, 0, 0))
	}
	if l.GetBlock(0, 1, 0) != blockdef.Air {
		t.Fatalf("cell above merged slab should remain air, got %v", l.GetBlock(0, 1, 0))
	}
}

// A falling block placed above a fluid column must descend through the
// fluid and land on solid ground.
func TestPlaceBlockFallThroughFluid(t *testing.T) {
	l := newTestLevel(t, 4, 6, 4)
	l.SetBlock(0, 0, 0, blockdef.Stone)
	l.SetBlock(0, 1, 0, blockdef.WaterStill)
	l.SetBlock(0, 2, 0, blockdef.WaterStill)

	changes := l.PlaceBlock(0, 3, 0, blockdef.Sand)

	found := false
	for _, c := range changes {
		if c.Y == 1 && c.Block == blockdef.Sand {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected sand to land at y=1 on top of stone, got %+v", changes)
	}
	if l.GetBlock(0, 1, 0) != blockdef.Sand {
		t.Fatalf("sand did not land at y=1, level is %v", l.GetBlock(0, 1, 0))
	}
}

// Breaking a fluid under a falling column collapses that column down
// through any fluid beneath the break, onto solid ground.
func TestPlaceBlockCollapseFallingColumnOnFluidBreak(t *testing.T) {
	l := newTestLevel(t, 4, 8, 4)
	l.SetBlock(0, 0, 0, blockdef.Stone)
	l.SetBlock(0, 1, 0, blockdef.WaterStill)
	l.SetBlock(0, 2, 0, blockdef.Sand)

	// Placing a fluid back at (0,1,0) is the break signal the policy
	// reads: it is already fluid, and the cell above (y=2) is falling.
	changes := l.PlaceBlock(0, 1, 0, blockdef.WaterStill)

	landedAtOne := false
	for _, c := range changes {
		if c.Y == 1 && c.Block == blockdef.Sand {
			landedAtOne = true
		}
	}
	if !landedAtOne {
		t.Fatalf("expected sand to collapse to y=1, got %+v", changes)
	}
}

func TestResetSpawnOverAllAirColumn(t *testing.T) {
	l := newTestLevel(t, 4, 4, 4)
	l.ResetSpawn()
	if l.SpawnY != 29 {
		t.Fatalf("SpawnY over all-air column = %d, want 29", l.SpawnY)
	}
	if l.SpawnX != l.SizeX*16+16 || l.SpawnZ != l.SizeZ*16+16 {
		t.Fatalf("spawn x/z = (%d,%d), want (%d,%d)", l.SpawnX, l.SpawnZ, l.SizeX*16+16, l.SizeZ*16+16)
	}
}

func TestResetSpawnAboveTopmostBlock(t *testing.T) {
	l := newTestLevel(t, 4, 4, 4)
	l.SetBlock(l.SizeX/2, 2, l.SizeZ/2, blockdef.Stone)
	l.ResetSpawn()
	if want := int16(2*32 + 61); l.SpawnY != want {
		t.Fatalf("SpawnY = %d, want %d", l.SpawnY, want)
	}
}
