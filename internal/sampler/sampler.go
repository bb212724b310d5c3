// Package sampler draws the per-run randomized parameters from an explicit,
// seeded generator.
package sampler

import (
	"math/rand/v2"

	"github.com/ivlev/dirtsynth/internal/config"
)

// RunConfig holds the immutable parameters of one run.
type RunConfig struct {
	RotationSpeed    float64    `yaml:"rotation_speed"` // градусы в секунду
	RotationChanges  int        `yaml:"rotation_changes"`
	FallSpeed        float64    `yaml:"fall_speed"`
	DisplaceStrength float64    `yaml:"displace_strength"`
	CloudsScale      float64    `yaml:"clouds_scale"`
	DirtLevel        int        `yaml:"dirt_level"`
	AnchorOffset     [3]float64 `yaml:"anchor_offset,flow"`
}

// AnchorRange bounds each coordinate of the anchor empty's local offset.
const AnchorRange = 10.0

// Sampler is the single random stream of a batch. It is not safe for
// concurrent use: the order of calls is part of the reproducible output.
type Sampler struct {
	rng *rand.Rand
	cfg *config.Config
}

// New creates a sampler seeded with cfg.Seed.
func New(cfg *config.Config) *Sampler {
	return &Sampler{
		rng: NewRand(cfg.Seed),
		cfg: cfg,
	}
}

// NewRand returns a deterministic PCG generator for seed. Both halves of
// the PCG state are expanded from seed with SplitMix64.
func NewRand(seed uint64) *rand.Rand {
	state := seed
	hi := splitMix64(&state)
	lo := splitMix64(&state)
	return rand.New(rand.NewPCG(hi, lo))
}

func splitMix64(state *uint64) uint64 {
	*state += 0x9e3779b97f4a7c15
	z := *state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// Rand exposes the shared stream for draws that belong to scene assembly
// (rotation weights, scroll offset).
func (s *Sampler) Rand() *rand.Rand {
	return s.rng
}

// Next draws the next RunConfig. Порядок выборок фиксирован.
func (s *Sampler) Next() RunConfig {
	rc := RunConfig{
		RotationSpeed:    Uniform(s.rng, s.cfg.RotationSpeed.Min, s.cfg.RotationSpeed.Max),
		RotationChanges:  IntN(s.rng, s.cfg.RotationChanges.Min, s.cfg.RotationChanges.Max),
		FallSpeed:        Uniform(s.rng, s.cfg.FallSpeed.Min, s.cfg.FallSpeed.Max),
		DisplaceStrength: Uniform(s.rng, s.cfg.DisplaceStrength.Min, s.cfg.DisplaceStrength.Max),
		CloudsScale:      Uniform(s.rng, s.cfg.CloudsScale.Min, s.cfg.CloudsScale.Max),
		DirtLevel:        s.cfg.DirtLevel,
	}
	for i := range rc.AnchorOffset {
		rc.AnchorOffset[i] = Uniform(s.rng, -AnchorRange, AnchorRange)
	}
	return rc
}

// Uniform returns a value in [lo, hi). The upper bound is not reachable.
func Uniform(r *rand.Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// IntN returns an integer in the closed interval [lo, hi].
func IntN(r *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.IntN(hi-lo+1)
}
