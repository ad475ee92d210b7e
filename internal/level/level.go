// Package level holds the in-memory voxel grid every connected client sees:
// its dimensions, spawn point, and block data, plus the placement policy
// that turns a raw client edit into the set of blocks that actually change.
package level

import (
	"fmt"

	"github.com/Technochips/chipscraft/internal/blockdef"
)

// BlockChange is one (x,y,z) cell whose stored block id changed as a
// side effect of a placement.
type BlockChange struct {
	X, Y, Z int16
	Block   blockdef.ID
}

// Level is a rectangular voxel grid plus the bookkeeping persist.go and the
// server package need: its name (also the save-file stem), spawn point, and
// a dirty flag so Save can skip unmodified levels.
type Level struct {
	Name string

	SizeX, SizeY, SizeZ int16

	SpawnX, SpawnY, SpawnZ int16
	SpawnYaw, SpawnPitch   byte

	Changed bool

	data []blockdef.ID
}

// New creates an empty, zero-sized level named name. Call Generate to give
// it dimensions and contents, or Load to populate it from a save file.
func New(name string) *Level {
	return &Level{Name: name}
}

func (l *Level) index(x, y, z int16) int {
	return int(x) + int(z)*int(l.SizeX) + int(y)*int(l.SizeX)*int(l.SizeZ)
}

// InBounds reports whether (x, y, z) addresses a cell of the level.
func (l *Level) InBounds(x, y, z int16) bool {
	return x >= 0 && y >= 0 && z >= 0 && x < l.SizeX && y < l.SizeY && z < l.SizeZ
}

// GetBlock returns the block stored at (x, y, z). It panics if the
// coordinate is out of bounds; callers must check InBounds first when the
// coordinate comes from client input.
func (l *Level) GetBlock(x, y, z int16) blockdef.ID {
	if !l.InBounds(x, y, z) {
		panic(fmt.Sprintf("level: out of bounds get (%d,%d,%d) in %dx%dx%d", x, y, z, l.SizeX, l.SizeY, l.SizeZ))
	}
	return l.data[l.index(x, y, z)]
}

// SetBlock stores b at (x, y, z) directly, with no placement policy
// applied, and marks the level changed. It panics on an out-of-bounds
// coordinate.
func (l *Level) SetBlock(x, y, z int16, b blockdef.ID) {
	if !l.InBounds(x, y, z) {
		panic(fmt.Sprintf("level: out of bounds set (%d,%d,%d) in %dx%dx%d", x, y, z, l.SizeX, l.SizeY, l.SizeZ))
	}
	l.Changed = true
	l.data[l.index(x, y, z)] = b
}

// PlaceBlock applies the placement policy for dropping block b at
// (x, y, z) and returns every cell that actually changed as a result. It
// always resets the spawn point, since the height map driving ResetSpawn
// may have moved.
//
// The policy has three cases, applied in this order:
//
//  1. b is a fluid and the cell above is occupied by a falling block
//     (sand/gravel): the falling column above slides down through any
//     fluid stacked beneath the break point, landing on solid ground.
//  2. b falls (sand/gravel) and the cell below is fluid: b descends
//     through the fluid column until it reaches non-fluid ground.
//  3. b has a slab partner and the cell below already holds b: the slab
//     beneath is replaced by its double-slab partner instead of stacking
//     a second single slab on top.
//
// Anything else is a plain single-cell write.
func (l *Level) PlaceBlock(x, y, z int16, b blockdef.ID) []BlockChange {
	data := blockdef.Get(b)

	if data.Fluid && y < l.SizeY-1 {
		above := l.GetBlock(x, y+1, z)
		if blockdef.Get(above).Fall {
			changes := l.collapseFallingColumn(x, y, z, above)
			l.ResetSpawn()
			return changes
		}
	} else {
		if data.Fall {
			for y > 0 && blockdef.Get(l.GetBlock(x, y-1, z)).Fluid {
				y--
			}
		}
		if data.HasSlabPartner() && y > 0 && l.GetBlock(x, y-1, z) == b {
			b = data.SlabPartner
			y--
		}
	}

	l.SetBlock(x, y, z, b)
	l.ResetSpawn()
	return []BlockChange{{X: x, Y: y, Z: z, Block: b}}
}

// collapseFallingColumn implements the fluid-break case of PlaceBlock:
// breaking the fluid at (x,y,z) drops the falling column resting on top of
// it down through any fluid beneath, onto solid ground.
func (l *Level) collapseFallingColumn(x, y, z int16, above blockdef.ID) []BlockChange {
	sandTowerBottom := y + 1
	sandTowerTop := sandTowerBottom
	line := []blockdef.ID{above}
	for {
		if sandTowerTop >= l.SizeY-1 {
			break
		}
		next := l.GetBlock(x, sandTowerTop+1, z)
		if !blockdef.Get(next).Fall {
			break
		}
		sandTowerTop++
		line = append(line, next)
	}

	fallenTowerBottom := y
	for {
		if fallenTowerBottom <= 0 {
			break
		}
		below := l.GetBlock(x, fallenTowerBottom-1, z)
		if !blockdef.Get(below).Fluid {
			break
		}
		fallenTowerBottom--
	}

	var changes []BlockChange
	fallenTowerTop := fallenTowerBottom + (sandTowerTop - sandTowerBottom)
	if sandTowerBottom-fallenTowerTop > 1 {
		l.SetBlock(x, y, z, blockdef.Air)
		changes = append(changes, BlockChange{X: x, Y: y, Z: z, Block: blockdef.Air})
	}

	for i, b := range line {
		yy := fallenTowerBottom + int16(i)
		if b != l.GetBlock(x, yy, z) {
			l.SetBlock(x, yy, z, b)
			changes = append(changes, BlockChange{X: x, Y: yy, Z: z, Block: b})
		}
	}

	top := sandTowerBottom
	if fallenTowerTop+1 > top {
		top = fallenTowerTop + 1
	}
	for yy := top; yy <= sandTowerTop; yy++ {
		l.SetBlock(x, yy, z, blockdef.Air)
		changes = append(changes, BlockChange{X: x, Y: yy, Z: z, Block: blockdef.Air})
	}

	return changes
}

// maxHeight returns the classic-protocol spawn height at column (x, z):
// y*32 + 61 for the topmost non-air block y (29 units above its top face),
// or a default of 29 over an all-air column.
func (l *Level) maxHeight(x, z int16) int16 {
	for y := l.SizeY - 1; y >= 0; y-- {
		if l.GetBlock(x, y, z) > blockdef.Air {
			return y*32 + 61
		}
	}
	return 29
}

// ResetSpawn recomputes the spawn point from the level's center column.
// Called after generation, after load, and after every placement, since
// placements can change the height map under the spawn column.
func (l *Level) ResetSpawn() {
	l.SpawnX = l.SizeX*16 + 16
	l.SpawnZ = l.SizeZ*16 + 16
	l.SpawnY = l.maxHeight(l.SizeX/2, l.SizeZ/2)
}
