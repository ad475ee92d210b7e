package level

import (
	"path/filepath"
	"testing"

	"github.com/Technochips/chipscraft/internal/blockdef"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "world.dat")

	l := New("world")
	if err := l.Generate(6, 6, 6, Flat, 0); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	l.SetBlock(1, 1, 1, blockdef.GoldOre)

	if err := l.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := New("world")
	if err := loaded.LoadFrom(path); err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if loaded.SizeX != l.SizeX || loaded.SizeY != l.SizeY || loaded.SizeZ != l.SizeZ {
		t.Fatalf("dimensions mismatch after round trip: got %dx%dx%d, want %dx%dx%d",
			loaded.SizeX, loaded.SizeY, loaded.SizeZ, l.SizeX, l.SizeY, l.SizeZ)
	}
	if loaded.GetBlock(1, 1, 1) != blockdef.GoldOre {
		t.Fatalf("GetBlock(1,1,1) = %v, want GoldOre", loaded.GetBlock(1, 1, 1))
	}
	for x := int16(0); x < l.SizeX; x++ {
		for y := int16(0); y < l.SizeY; y++ {
			for z := int16(0); z < l.SizeZ; z++ {
				if l.GetBlock(x, y, z) != loaded.GetBlock(x, y, z) {
					t.Fatalf("block mismatch at (%d,%d,%d): %v vs %v", x, y, z, l.GetBlock(x, y, z), loaded.GetBlock(x, y, z))
				}
			}
		}
	}
}

func TestLoadFromRejectsSizeLengthMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.dat")

	l := New("world")
	if err := l.Generate(4, 4, 4, Empty, 0); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	l.SizeX = 5 // corrupt the declared size relative to the actual data
	if err := l.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := New("world")
	if err := loaded.LoadFrom(path); err == nil {
		t.Fatalf("expected LoadFrom to reject a size/length mismatch")
	}
}

func TestNetworkBytesFraming(t *testing.T) {
	l := New("world")
	if err := l.Generate(4, 4, 4, Empty, 0); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	b, err := l.Bytes(SaveNetwork)
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if len(b) == 0 {
		t.Fatalf("expected non-empty network payload")
	}
}
