// Package noise implements the 2-D noise primitives the vanilla level
// generator composes: a seeded Perlin source (gradient-hash table lookup,
// not the classic 512-entry permutation scheme), an octave sum of Perlin
// sources, and the domain-warping combinator of two sources.
package noise

import "math"

// Source is anything that can be sampled at a 2-D point.
type Source interface {
	At(x, y float64) float64
}

// Perlin implements 2-D Perlin noise over a single shuffled 256-entry
// gradient table, the same construction the original map generator uses.
type Perlin struct {
	table [256]byte
}

// NewPerlin creates a Perlin noise generator from a seed. The table is a
// 0..255 identity permutation shuffled by a seeded Fisher-Yates pass.
func NewPerlin(seed int64) *Perlin {
	p := &Perlin{}
	for i := range p.table {
		p.table[i] = byte(i)
	}

	s := uint64(seed)
	for i := 255; i > 0; i-- {
		s = s*6364136223846793005 + 1442695040888963407
		j := int(uint64(s>>33) % uint64(i+1))
		p.table[i], p.table[j] = p.table[j], p.table[i]
	}
	return p
}

func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

// Gradient flag tables: two bits per direction, packed 16-wide, indexed by
// a 4-bit hash shifted left by 1.
const (
	xFlags int32 = 0x46552222
	yFlags int32 = 0x2222550A
)

func gradDot(table *[256]byte, hashIndex byte, x, y float64) float64 {
	hash := int32(table[table[hashIndex]]&0xF) << 1
	gx := float64(((xFlags>>uint32(hash))&3)-1) * x
	gy := float64(((yFlags>>uint32(hash))&3)-1) * y
	return gx + gy
}

// At computes 2-D Perlin noise at (x, y).
func (p *Perlin) At(x, y float64) float64 {
	xFloor := math.Floor(x)
	yFloor := math.Floor(y)
	xx := byte(int64(xFloor))
	yy := byte(int64(yFloor))
	x -= xFloor
	y -= yFloor

	u := fade(x)
	v := fade(y)

	a := p.table[xx] + yy
	b := p.table[xx+1] + yy

	g22 := gradDot(&p.table, a, x, y)
	g12 := gradDot(&p.table, b, x-1, y)
	c1 := g22 + u*(g12-g22)

	g21 := gradDot(&p.table, a+1, x, y-1)
	g11 := gradDot(&p.table, b+1, x-1, y-1)
	c2 := g21 + u*(g11-g21)

	return c1 + v*(c2-c1)
}

// Octave sums n independently-seeded Perlin sources, halving frequency and
// doubling amplitude each octave so broad low-frequency structure
// dominates.
type Octave struct {
	layers []*Perlin
}

// NewOctave builds an n-octave noise source from a seed. Each octave gets
// its own Perlin instance seeded off of seed so the octaves are
// uncorrelated.
func NewOctave(seed int64, n int) *Octave {
	o := &Octave{layers: make([]*Perlin, n)}
	for i := 0; i < n; i++ {
		o.layers[i] = NewPerlin(int64(uint64(seed) + uint64(i)*0x9E3779B97F4A7C15))
	}
	return o
}

// At samples the octave sum at (x, y).
func (o *Octave) At(x, y float64) float64 {
	var value, amp, freq float64 = 0, 1, 1
	for _, p := range o.layers {
		value += p.At(x*freq, y*freq) * amp
		amp *= 2
		freq /= 2
	}
	return value
}

// Combined domain-warps a by the output of b: Combined(x,y) = a(x+b(x,y), y).
// This is the classic generator's "combined noise" building block, used to
// break up the otherwise axis-aligned structure of a raw octave sum.
type Combined struct {
	a, b Source
}

// NewCombined builds a Combined noise source from two sources.
func NewCombined(a, b Source) *Combined {
	return &Combined{a: a, b: b}
}

// At samples the combined source at (x, y).
func (c *Combined) At(x, y float64) float64 {
	return c.a.At(x+c.b.At(x, y), y)
}
