package sim

import (
	"math"
	"math/rand/v2"
)

// DefaultSeed keeps runs reproducible; the shipped campaign relies on stable
// randomized fatality counts within a session.
const DefaultSeed uint64 = 12345

// RNG is the single deterministic randomness source shared by every system.
// All gameplay draws go through it so a seed fully determines a run.
type RNG struct {
	uniform *rand.Rand
	noise   *gradientNoise
}

func NewRNG(seed uint64) *RNG {
	return &RNG{
		uniform: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		noise:   newGradientNoise(seed),
	}
}

// IntN returns a uniform int in [0, n). n must be positive.
func (r *RNG) IntN(n int) int { return r.uniform.IntN(n) }

// IntBetween returns a uniform int in [lo, hi]. Swapped bounds are corrected.
func (r *RNG) IntBetween(lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + r.uniform.IntN(hi-lo+1)
}

// Float64 returns a uniform float in [0, 1).
func (r *RNG) Float64() float64 { return r.uniform.Float64() }

// FloatBetween returns a uniform float in [lo, hi).
func (r *RNG) FloatBetween(lo, hi float64) float64 {
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + r.uniform.Float64()*(hi-lo)
}

// Chance reports true with probability p.
func (r *RNG) Chance(p float64) bool {
	return r.uniform.Float64() < p
}

// UnitSphere returns a point uniformly distributed on the unit sphere. The
// consequence explosion draws its velocity kick from here; the Z component is
// discarded by 2D consumers but keeping the sphere matches the distribution
// of kick magnitudes in the plane.
func (r *RNG) UnitSphere() (x, y, z float64) {
	for {
		x = r.FloatBetween(-1, 1)
		y = r.FloatBetween(-1, 1)
		z = r.FloatBetween(-1, 1)
		lenSq := x*x + y*y + z*z
		if lenSq > 1e-9 && lenSq <= 1 {
			length := math.Sqrt(lenSq)
			return x / length, y / length, z / length
		}
	}
}

// Noise samples smooth gradient noise at t, in [-1, 1]. Ambient drift such as
// smoke jitter reads from here rather than from the uniform stream so that
// consuming ambient values does not perturb gameplay draws.
func (r *RNG) Noise(t float64) float64 { return r.noise.at(t) }

// gradientNoise is 1D Perlin-style noise over a fixed permuted gradient
// table.
type gradientNoise struct {
	gradients [256]float64
	perm      [256]uint8
}

func newGradientNoise(seed uint64) *gradientNoise {
	src := rand.New(rand.NewPCG(seed^0xdeadbeef, seed))
	n := &gradientNoise{}
	for i := range n.gradients {
		n.gradients[i] = src.Float64()*2 - 1
		n.perm[i] = uint8(i)
	}
	for i := len(n.perm) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		n.perm[i], n.perm[j] = n.perm[j], n.perm[i]
	}
	return n
}

func (n *gradientNoise) gradient(cell int) float64 {
	return n.gradients[n.perm[uint8(cell)]]
}

func (n *gradientNoise) at(t float64) float64 {
	cell := int(math.Floor(t))
	frac := t - math.Floor(t)

	g0 := n.gradient(cell)
	g1 := n.gradient(cell + 1)

	v0 := g0 * frac
	v1 := g1 * (frac - 1)

	// Smoothstep fade, as in classic Perlin.
	fade := frac * frac * frac * (frac*(frac*6-15) + 10)
	return v0 + fade*(v1-v0)
}
