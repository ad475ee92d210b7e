// Package blockdef is the static catalog of the 50 block kinds the classic
// protocol knows, along with the placement/destruction/fall/slab/fluid
// flags the level and server packages drive policy from.
package blockdef

// ID identifies a block kind. Only values in [0, Count) are valid; every
// byte stored in a level must satisfy this.
type ID uint8

// Count is the number of defined block kinds; every stored block id must
// be strictly less than it.
const Count = 50

// Named ids referenced directly by generation and placement logic.
const (
	Air         ID = 0
	Stone       ID = 1
	Grass       ID = 2
	Dirt        ID = 3
	Cobblestone ID = 4
	Wood        ID = 17
	Leaves      ID = 18

	WaterFlowing ID = 8
	WaterStill   ID = 9
	LavaFlowing  ID = 10
	LavaStill    ID = 11

	Sand   ID = 12
	Gravel ID = 13

	GoldOre ID = 14
	IronOre ID = 15
	CoalOre ID = 16

	Flower    ID = 37
	Rose      ID = 38
	Mushroom1 ID = 39
	Mushroom2 ID = 40

	DoubleSlab ID = 43
	Slab       ID = 44

	Bedrock ID = 7
)

// Block is one entry of the catalog: the placement/destruction/fall/slab/
// fluid flags spec.md §3 describes.
type Block struct {
	Name string

	// PlaceOpOnly restricts placing this block to Operators (water, lava,
	// bedrock).
	PlaceOpOnly bool
	// DestroyOpOnly restricts destroying this block to Operators (bedrock).
	DestroyOpOnly bool
	// Fall marks a block subject to falling through fluids on placement
	// (sand, gravel).
	Fall bool
	// Fluid marks a block that other blocks may be placed inside,
	// displacing it (air, water, lava).
	Fluid bool
	// SlabPartner is the id this block combines into when stacked on a
	// copy of itself, or 0 (Air, never a valid partner) if it has none.
	SlabPartner ID
	hasPartner  bool
}

// HasSlabPartner reports whether b combines into another block when
// stacked on itself.
func (b Block) HasSlabPartner() bool { return b.hasPartner }

var table [Count]Block

func define(id ID, name string, opts ...func(*Block)) {
	b := Block{Name: name}
	for _, opt := range opts {
		opt(&b)
	}
	table[id] = b
}

func placeOpOnly(b *Block)   { b.PlaceOpOnly = true }
func destroyOpOnly(b *Block) { b.DestroyOpOnly = true }
func fall(b *Block)          { b.Fall = true }
func fluid(b *Block)         { b.Fluid = true }

func slabPartner(partner ID) func(*Block) {
	return func(b *Block) {
		b.SlabPartner = partner
		b.hasPartner = true
	}
}

func init() {
	define(0, "Air", fluid)
	define(1, "Stone")
	define(2, "Grass")
	define(3, "Dirt")
	define(4, "Cobblestone")
	define(5, "Planks")
	define(6, "Sapling")
	define(7, "Bedrock", placeOpOnly, destroyOpOnly)
	define(8, "Water", placeOpOnly, fluid)
	define(9, "StationaryWater", placeOpOnly, fluid)
	define(10, "Lava", placeOpOnly, fluid)
	define(11, "StationaryLava", placeOpOnly, fluid)
	define(12, "Sand", fall)
	define(13, "Gravel", fall)
	define(14, "GoldOre")
	define(15, "IronOre")
	define(16, "CoalOre")
	define(17, "Wood")
	define(18, "Leaves")
	define(19, "Sponge")
	define(20, "Glass")
	define(21, "RedCloth")
	define(22, "OrangeCloth")
	define(23, "YellowCloth")
	define(24, "ChartreuseCloth")
	define(25, "GreenCloth")
	define(26, "SpringGreenCloth")
	define(27, "CyanCloth")
	define(28, "CapriCloth")
	define(29, "UltramarineCloth")
	define(30, "VioletCloth")
	define(31, "PurpleCloth")
	define(32, "MagentaCloth")
	define(33, "RoseCloth")
	define(34, "DarkGrayCloth")
	define(35, "LightGrayCloth")
	define(36, "WhiteCloth")
	define(37, "Flower")
	define(38, "Rose")
	define(39, "BrownMushroom")
	define(40, "RedMushroom")
	define(41, "Gold")
	define(42, "Iron")
	define(43, "DoubleSlab")
	define(44, "Slab", slabPartner(DoubleSlab))
	define(45, "Brick")
	define(46, "TNT")
	define(47, "Bookshelf")
	define(48, "MossyCobblestone")
	define(49, "Obsidian")
}

// Get returns the catalog entry for id. id must be < Count; it panics
// otherwise. Protocol decode does not range-check block bytes, so ids that
// come from the wire are checked with Valid first (the server's SetBlock
// does this).
func Get(id ID) Block {
	return table[id]
}

// Valid reports whether id names a defined block kind.
func Valid(id ID) bool {
	return id < Count
}
