package level

import (
	"math"

	"github.com/Technochips/chipscraft/internal/blockdef"
	"github.com/Technochips/chipscraft/internal/noise"
)

// GenerationType selects how Generate fills a freshly sized level.
type GenerationType int

const (
	// Empty leaves every cell air.
	Empty GenerationType = iota
	// Flat fills a lava floor, a stone/dirt/grass slab stack up to the
	// half-height mark, and nothing above it.
	Flat
	// Vanilla runs the full terrain, cave, ore, water, and vegetation
	// pipeline.
	Vanilla
)

// Generate sizes l and fills it according to genType. Vanilla generation is
// driven entirely by seed: the same seed and dimensions always produce the
// same level.
func (l *Level) Generate(sizeX, sizeY, sizeZ int16, genType GenerationType, seed int64) error {
	l.SizeX, l.SizeY, l.SizeZ = sizeX, sizeY, sizeZ
	l.data = make([]blockdef.ID, int(sizeX)*int(sizeY)*int(sizeZ))

	switch genType {
	case Empty:
		// already all-air

	case Flat:
		l.generateFlat()

	case Vanilla:
		l.generateVanilla(seed)
	}

	l.ResetSpawn()
	return nil
}

func (l *Level) generateFlat() {
	floor := l.SizeY / 2
	for y := int16(0); y <= floor; y++ {
		var b blockdef.ID
		switch {
		case y == 0:
			b = blockdef.LavaFlowing
		case y < floor-3:
			b = blockdef.Stone
		case y < floor:
			b = blockdef.Dirt
		default:
			b = blockdef.Grass
		}
		for x := int16(0); x < l.SizeX; x++ {
			for z := int16(0); z < l.SizeZ; z++ {
				l.SetBlock(x, y, z, b)
			}
		}
	}
}

// generateVanilla runs the nine-phase classic terrain generator: raise,
// erode, soil, carve caves, vein ores, water, melt lava, grow surface
// cover, and plant vegetation, in that order. Every random draw goes
// through r so the whole pipeline is reproducible from seed alone.
func (l *Level) generateVanilla(seed int64) {
	r := newRNG(seed)
	sizeX, sizeY, sizeZ := l.SizeX, l.SizeY, l.SizeZ

	heightMap := make([]int16, int(sizeX)*int(sizeZ))
	hmIndex := func(x, z int16) int { return int(x) + int(z)*int(sizeX) }

	// Phase 1: raise — two combined-noise height contributions, blended by
	// a third noise's sign, give the base terrain height.
	{
		noise1 := noise.NewCombined(noise.NewOctave(r.seedNoise(), 8), noise.NewOctave(r.seedNoise(), 8))
		noise2 := noise.NewCombined(noise.NewOctave(r.seedNoise(), 8), noise.NewOctave(r.seedNoise(), 8))
		noise3 := noise.NewOctave(r.seedNoise(), 6)

		for x := int16(0); x < sizeX; x++ {
			for z := int16(0); z < sizeZ; z++ {
				baseHeight := noise1.At(float64(x)*1.3, float64(z)*1.3)/6.0 - 4.0
				var height float64
				if noise3.At(float64(x), float64(z))/8.0 > 0.0 {
					height = baseHeight
				} else {
					alt := noise2.At(float64(x)*1.3, float64(z)*1.3)/5.0 + 6.0
					height = math.Max(baseHeight, alt)
				}
				height /= 2.0
				if height < 0.0 {
					height *= 0.8
				}
				v := int16(height) + sizeY/2
				heightMap[hmIndex(x, z)] = clampI16(v, 0, sizeY-1)
			}
		}
	}

	// Phase 2: erode — where a second noise pair spikes, flatten the
	// height to the nearest even-or-odd step set by the sign of a third
	// draw.
	{
		noise1 := noise.NewCombined(noise.NewOctave(r.seedNoise(), 8), noise.NewOctave(r.seedNoise(), 8))
		noise2 := noise.NewCombined(noise.NewOctave(r.seedNoise(), 8), noise.NewOctave(r.seedNoise(), 8))

		for x := int16(0); x < sizeX; x++ {
			for z := int16(0); z < sizeZ; z++ {
				c := hmIndex(x, z)
				a := noise1.At(float64(x)*2.0, float64(z)*2.0) / 8.0
				var b int16
				if noise2.At(float64(x)*2.0, float64(z)*2.0) > 0.0 {
					b = 1
				}
				if a > 2.0 {
					heightMap[c] = ((heightMap[c]-b)/2)*2 + b
				}
			}
		}
	}

	// Phase 3: soil — lay lava at the floor, stone up to a noise-varied
	// transition, dirt from there to the surface.
	{
		n := noise.NewPerlin(r.seedNoise())
		for x := int16(0); x < sizeX; x++ {
			for z := int16(0); z < sizeZ; z++ {
				dirtThickness := int16(n.At(float64(x), float64(z))/24.0 - 4.0)
				dirtTransition := heightMap[hmIndex(x, z)]
				stoneTransition := dirtTransition + dirtThickness

				l.SetBlock(x, 0, z, blockdef.LavaStill)
				for y := int16(1); y <= stoneTransition; y++ {
					l.SetBlock(x, y, z, blockdef.Stone)
				}
				for y := stoneTransition + 1; y <= dirtTransition; y++ {
					l.SetBlock(x, y, z, blockdef.Dirt)
				}
			}
		}
	}

	// Phase 4: carve — random worm-like walks through the stone, each
	// clearing an oblate spheroid of stone to air as it goes.
	caveCount := int(sizeX) * int(sizeY) * int(sizeZ) / 8192
	for i := 0; i < caveCount; i++ {
		caveX := float64(r.intn(sizeX))
		caveY := float64(r.intn(sizeY))
		caveZ := float64(r.intn(sizeZ))
		caveLen := int16(r.float64() + r.float64()*200.0)

		theta := r.float64() * math.Pi * 2.0
		deltaTheta := 0.0
		phi := r.float64() * math.Pi * 2.0
		deltaPhi := 0.0

		caveRadius := r.float64() * r.float64()

		for step := int16(0); step < caveLen; step++ {
			caveX += math.Sin(theta) * math.Cos(phi)
			caveY += math.Cos(theta) * math.Cos(phi)
			caveZ += math.Sin(phi)

			theta += deltaTheta * 0.2
			deltaTheta = (deltaTheta * 0.9) + r.float64() - r.float64()
			phi = phi/2.0 + deltaPhi/4.0
			deltaPhi = (deltaPhi * 0.75) + r.float64() - r.float64()

			if r.float64() >= 0.25 {
				centerX := caveX + (float64(r.intn(4))-2.0)*0.2
				centerY := caveY + (float64(r.intn(4))-2.0)*0.2
				centerZ := caveZ + (float64(r.intn(4))-2.0)*0.2

				radius := (float64(sizeY) - centerY) / float64(sizeY)
				radius = 1.2 + (radius*3.5+1.0)*caveRadius
				radius *= math.Sin(float64(step) * math.Pi / float64(caveLen))
				l.fillOblateSpheroid(centerX, centerY, centerZ, blockdef.Air, radius)
			}
		}
	}

	// Phase 5: ore veins — same worm-walk shape as caves, carving stone
	// into ore instead of air. The per-step theta update here is an
	// absolute assignment, not an accumulation: each vein's heading is
	// reset to 20% of the current heading delta every step rather than
	// drifting from its starting angle like cave carving does.
	veins := []struct {
		block     blockdef.ID
		abundance float64
	}{
		{blockdef.GoldOre, 0.5},
		{blockdef.IronOre, 0.7},
		{blockdef.CoalOre, 0.9},
	}
	for _, vein := range veins {
		veinCount := int(float64(sizeX) * float64(sizeY) * float64(sizeZ) * vein.abundance / 16384.0)
		for i := 0; i < veinCount; i++ {
			veinX := float64(r.intn(sizeX))
			veinY := float64(r.intn(sizeY))
			veinZ := float64(r.intn(sizeZ))
			veinLen := int16(r.float64() * r.float64() * 75.0 * vein.abundance)

			theta := r.float64() * math.Pi * 2.0
			deltaTheta := 0.0
			phi := r.float64() * math.Pi * 2.0
			deltaPhi := 0.0

			for step := int16(0); step < veinLen; step++ {
				veinX += math.Sin(theta) * math.Cos(phi)
				veinY += math.Cos(theta) * math.Cos(phi)
				veinZ += math.Sin(phi)

				theta = deltaTheta * 0.2
				deltaTheta = (deltaTheta * 0.9) + r.float64() - r.float64()
				phi = phi/2.0 + deltaPhi/4.0
				deltaPhi = (deltaPhi * 0.9) + r.float64() - r.float64()

				radius := vein.abundance*math.Sin(float64(step)*math.Pi/float64(veinLen)) + 1.0
				l.fillOblateSpheroid(veinX, veinY, veinZ, vein.block, radius)
			}
		}
	}

	// Phase 6: water — flood the four edges and a scattering of interior
	// basins at half-height with still water.
	waterY := sizeY/2 - 1
	for x := int16(0); x < sizeX; x++ {
		l.floodFill(x, waterY, 0, blockdef.WaterStill)
		l.floodFill(x, waterY, sizeZ-1, blockdef.WaterStill)
	}
	for z := int16(0); z < sizeZ; z++ {
		l.floodFill(0, waterY, z, blockdef.WaterStill)
		l.floodFill(sizeX-1, waterY, z, blockdef.WaterStill)
	}
	for i := 0; i < int(sizeX)*int(sizeZ)/800; i++ {
		l.floodFill(r.intn(sizeX), waterY-r.rangeN(1, 3), r.intn(sizeZ), blockdef.WaterStill)
	}

	// Phase 7: melt — scatter a handful of lava pockets deep below the
	// water table.
	for i := 0; i < int(sizeX)*int(sizeY)*int(sizeZ)/20000; i++ {
		y := int16(float64(waterY-3) * r.float64() * r.float64())
		l.floodFill(r.intn(sizeX), y, r.intn(sizeZ), blockdef.LavaStill)
	}

	// Phase 8: grow — cover the surface with sand, gravel, or grass
	// depending on what's directly above it and two more noise fields.
	{
		noise1 := noise.NewOctave(r.seedNoise(), 8)
		noise2 := noise.NewOctave(r.seedNoise(), 8)

		for x := int16(0); x < sizeX; x++ {
			for z := int16(0); z < sizeZ; z++ {
				sandChance := noise1.At(float64(x), float64(z)) > 8.0
				gravelChance := noise2.At(float64(x), float64(z)) > 12.0

				y := heightMap[hmIndex(x, z)]
				blockAbove := l.GetBlock(x, y+1, z)

				switch blockAbove {
				case blockdef.WaterStill:
					if gravelChance {
						l.SetBlock(x, y, z, blockdef.Gravel)
					}
				case blockdef.Air:
					if y <= sizeY/2 && sandChance {
						l.SetBlock(x, y, z, blockdef.Sand)
					} else {
						l.SetBlock(x, y, z, blockdef.Grass)
					}
				}
			}
		}
	}

	// Phase 9: plant — scatter flower/mushroom patches and trees across
	// the grown surface.
	l.plantFlowers(r, heightMap, hmIndex)
	l.plantMushrooms(r, heightMap, hmIndex)
	l.plantTrees(r, heightMap, hmIndex)
}

func (l *Level) plantFlowers(r *rng, heightMap []int16, hmIndex func(int16, int16) int) {
	sizeX, sizeZ := l.SizeX, l.SizeZ
	for i := 0; i < int(sizeX)*int(sizeZ)/3000; i++ {
		b := blockdef.Rose
		if r.boolean() {
			b = blockdef.Flower
		}
		patchX := r.intn(sizeX)
		patchZ := r.intn(sizeZ)
		for p := 0; p < 10; p++ {
			x, z := patchX, patchZ
			for s := 0; s < 5; s++ {
				x += r.intn(6) - r.intn(6)
				z += r.intn(6) - r.intn(6)
				if x >= 0 && x < sizeX && z >= 0 && z < sizeZ {
					y := heightMap[hmIndex(x, z)] + 1
					if l.GetBlock(x, y, z) == blockdef.Air && l.GetBlock(x, y-1, z) == blockdef.Grass {
						l.SetBlock(x, y, z, b)
					}
				}
			}
		}
	}
}

func (l *Level) plantMushrooms(r *rng, heightMap []int16, hmIndex func(int16, int16) int) {
	sizeX, sizeY, sizeZ := l.SizeX, l.SizeY, l.SizeZ
	for i := 0; i < int(sizeX)*int(sizeY)*int(sizeZ)/2000; i++ {
		b := blockdef.Mushroom2
		if r.boolean() {
			b = blockdef.Mushroom1
		}
		patchX := r.intn(sizeX)
		patchY := r.intn(sizeY)
		patchZ := r.intn(sizeZ)
		for p := 0; p < 20; p++ {
			x, y, z := patchX, patchY, patchZ
			for s := 0; s < 5; s++ {
				x += r.intn(6) - r.intn(6)
				y += r.intn(2) - r.intn(2)
				z += r.intn(6) - r.intn(6)
				if x >= 0 && x < sizeX && z >= 0 && z < sizeZ && y >= 0 && y < heightMap[hmIndex(x, z)]-1 {
					if l.GetBlock(x, y, z) == blockdef.Air && l.GetBlock(x, y-1, z) == blockdef.Stone {
						l.SetBlock(x, y, z, b)
					}
				}
			}
		}
	}
}

func (l *Level) plantTrees(r *rng, heightMap []int16, hmIndex func(int16, int16) int) {
	sizeX, sizeZ := l.SizeX, l.SizeZ
	for i := 0; i < int(sizeX)*int(sizeZ)/4000; i++ {
		patchX := r.intn(sizeX)
		patchZ := r.intn(sizeZ)
		for p := 0; p < 20; p++ {
			x, z := patchX, patchZ
			for s := 0; s < 20; s++ {
				x += r.intn(6) - r.intn(6)
				z += r.intn(6) - r.intn(6)
				if x >= 0 && x < sizeX && z >= 0 && z < sizeZ && r.float64() <= 0.25 {
					y := heightMap[hmIndex(x, z)] + 1
					treeHeight := r.rangeN(4, 7)
					if l.isSpaceForTree(x, y, z, treeHeight) {
						l.growTree(r, x, y, z, treeHeight)
					}
				}
			}
		}
	}
}

func clampI16(v, lo, hi int16) int16 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// fillOblateSpheroid replaces every Stone cell within radius r of
// (x, y, z) with b. The y-axis is compressed (weighted 2x in the distance
// check) so caves and veins read as flattened ellipsoids rather than
// spheres.
func (l *Level) fillOblateSpheroid(x, y, z float64, b blockdef.ID, r float64) {
	xBeg := clampI16(int16(math.Floor(math.Max(x-r, 0))), 0, l.SizeX)
	xEnd := clampI16(int16(math.Floor(math.Min(x+r, float64(l.SizeX)))), 0, l.SizeX)
	yBeg := clampI16(int16(math.Floor(math.Max(y-r, 0))), 0, l.SizeY)
	yEnd := clampI16(int16(math.Floor(math.Min(y+r, float64(l.SizeY)))), 0, l.SizeY)
	zBeg := clampI16(int16(math.Floor(math.Max(z-r, 0))), 0, l.SizeZ)
	zEnd := clampI16(int16(math.Floor(math.Min(z+r, float64(l.SizeZ)))), 0, l.SizeZ)

	radiusSq := r * r
	for yy := yBeg; yy < yEnd; yy++ {
		dy := yy - int16(y)
		for zz := zBeg; zz < zEnd; zz++ {
			dz := zz - int16(z)
			for xx := xBeg; xx < xEnd; xx++ {
				dx := xx - int16(x)
				if float64(dx*dx+2*dy*dy+dz*dz) < radiusSq {
					if l.GetBlock(xx, yy, zz) == blockdef.Stone {
						l.SetBlock(xx, yy, zz, b)
					}
				}
			}
		}
	}
}

// floodFill spreads b from (x, y, z) into every orthogonally (and
// downward) connected Air cell. Used to fill basins with water and pockets
// with lava from a handful of seed points.
func (l *Level) floodFill(x, y, z int16, b blockdef.ID) {
	type cell struct{ x, y, z int16 }
	stack := []cell{{x, y, z}}
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !l.InBounds(c.x, c.y, c.z) {
			continue
		}
		if l.GetBlock(c.x, c.y, c.z) != blockdef.Air {
			continue
		}
		l.SetBlock(c.x, c.y, c.z, b)

		if c.x > 0 {
			stack = append(stack, cell{c.x - 1, c.y, c.z})
		}
		if c.x < l.SizeX-1 {
			stack = append(stack, cell{c.x + 1, c.y, c.z})
		}
		if c.z > 0 {
			stack = append(stack, cell{c.x, c.y, c.z - 1})
		}
		if c.z < l.SizeZ-1 {
			stack = append(stack, cell{c.x, c.y, c.z + 1})
		}
		if c.y > 0 {
			stack = append(stack, cell{c.x, c.y - 1, c.z})
		}
	}
}

// isSpaceForTree reports whether the column at (x, z) starting at y has
// enough clear air to grow a tree of the given height: a narrow shaft for
// the trunk and lower canopy, widening for the top two rings of leaves.
func (l *Level) isSpaceForTree(x, y, z, height int16) bool {
	baseHeight := height - 4
	for yy := y; yy < y+baseHeight; yy++ {
		for zz := z - 1; zz <= z+1; zz++ {
			for xx := x - 1; xx <= x+1; xx++ {
				if !l.InBounds(xx, yy, zz) {
					return false
				}
				if l.GetBlock(xx, yy, zz) != blockdef.Air {
					return false
				}
			}
		}
	}
	for yy := y + baseHeight; yy < y+height; yy++ {
		for zz := z - 2; zz <= z+2; zz++ {
			for xx := x - 2; xx <= x+2; xx++ {
				if !l.InBounds(xx, yy, zz) {
					return false
				}
				if l.GetBlock(xx, yy, zz) != blockdef.Air {
					return false
				}
			}
		}
	}
	return true
}

// growTree writes a trunk of Wood topped by two rings of Leaves, the
// corners of each ring thinned out at random so the canopy isn't a perfect
// cube.
func (l *Level) growTree(r *rng, x, y, z, height int16) {
	topStart := y + (height - 2)
	for yy := y + height - 4; yy < topStart; yy++ {
		for zz := int16(-2); zz <= 2; zz++ {
			for xx := int16(-2); xx <= 2; xx++ {
				px, pz := x+xx, z+zz
				if abs16(xx) == 2 && abs16(zz) == 2 {
					if r.boolean() {
						l.SetBlock(px, yy, pz, blockdef.Leaves)
					}
				} else {
					l.SetBlock(px, yy, pz, blockdef.Leaves)
				}
			}
		}
	}
	for yy := topStart; yy < y+height; yy++ {
		for zz := int16(-1); zz <= 1; zz++ {
			for xx := int16(-1); xx <= 1; xx++ {
				px, pz := x+xx, z+zz
				if abs16(xx) == 1 && abs16(zz) == 1 {
					if r.boolean() {
						l.SetBlock(px, yy, pz, blockdef.Leaves)
					}
				} else {
					l.SetBlock(px, yy, pz, blockdef.Leaves)
				}
			}
		}
	}
	for yy := y; yy < y+height-1; yy++ {
		l.SetBlock(x, yy, z, blockdef.Wood)
	}
	l.SetBlock(x, y, z, blockdef.Wood)
}

func abs16(v int16) int16 {
	if v < 0 {
		return -v
	}
	return v
}
