package blockdef

import "testing"

func TestFlagsMatchSpec(t *testing.T) {
	cases := []struct {
		id                         ID
		placeOp, destroyOp, fall, fluid bool
	}{
		{Air, false, false, false, true},
		{Stone, false, false, false, false},
		{WaterFlowing, true, false, false, true},
		{WaterStill, true, false, false, true},
		{LavaFlowing, true, false, false, true},
		{LavaStill, true, false, false, true},
		{Sand, false, false, true, false},
		{Gravel, false, false, true, false},
		{Bedrock, true, true, false, false},
	}
	for _, c := range cases {
		b := Get(c.id)
		if b.PlaceOpOnly != c.placeOp || b.DestroyOpOnly != c.destroyOp || b.Fall != c.fall || b.Fluid != c.fluid {
			t.Errorf("block %d (%s): got {placeOp:%v destroyOp:%v fall:%v fluid:%v}, want {%v %v %v %v}",
				c.id, b.Name, b.PlaceOpOnly, b.DestroyOpOnly, b.Fall, b.Fluid, c.placeOp, c.destroyOp, c.fall, c.fluid)
		}
	}
}

func TestSlabPartner(t *testing.T) {
	slab := Get(Slab)
	if !slab.HasSlabPartner() || slab.SlabPartner != DoubleSlab {
		t.Fatalf("Slab should have DoubleSlab as its partner, got %v (has=%v)", slab.SlabPartner, slab.HasSlabPartner())
	}
	double := Get(DoubleSlab)
	if double.HasSlabPartner() {
		t.Fatalf("DoubleSlab should not have a slab partner")
	}
}

func TestAllDefined(t *testing.T) {
	for i := ID(0); i < Count; i++ {
		if Get(i).Name == "" {
			t.Errorf("block id %d has no name defined", i)
		}
	}
}

func TestValid(t *testing.T) {
	if !Valid(49) {
		t.Error("49 should be valid")
	}
	if Valid(50) {
		t.Error("50 should not be valid")
	}
}
