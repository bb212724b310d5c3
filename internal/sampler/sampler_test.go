package sampler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/dirtsynth/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Seed:             0,
		Runs:             2,
		Frames:           120,
		FPS:              30,
		DirtLevel:        9,
		RotationSpeed:    config.Range{Min: 60, Max: 360},
		RotationChanges:  config.IntRange{Min: 0, Max: 4},
		FallSpeed:        config.Range{Min: 1, Max: 10},
		DisplaceStrength: config.Range{Min: 0.2, Max: 2},
		CloudsScale:      config.Range{Min: 1, Max: 2},
	}
}

func TestNextIsDeterministic(t *testing.T) {
	cfg := testConfig()
	a, b := New(cfg), New(cfg)

	for i := 0; i < 50; i++ {
		require.Equal(t, a.Next(), b.Next(), "run %d diverged", i)
	}
}

func TestDifferentSeedsDiffer(t *testing.T) {
	cfg := testConfig()
	other := *cfg
	other.Seed = 1

	assert.NotEqual(t, New(cfg).Next(), New(&other).Next())
}

func TestNextStaysInRange(t *testing.T) {
	cfg := testConfig()
	s := New(cfg)

	for i := 0; i < 1000; i++ {
		rc := s.Next()
		assert.GreaterOrEqual(t, rc.RotationSpeed, cfg.RotationSpeed.Min)
		assert.LessOrEqual(t, rc.RotationSpeed, cfg.RotationSpeed.Max)
		assert.GreaterOrEqual(t, rc.RotationChanges, cfg.RotationChanges.Min)
		assert.LessOrEqual(t, rc.RotationChanges, cfg.RotationChanges.Max)
		assert.GreaterOrEqual(t, rc.FallSpeed, cfg.FallSpeed.Min)
		assert.LessOrEqual(t, rc.FallSpeed, cfg.FallSpeed.Max)
		assert.GreaterOrEqual(t, rc.DisplaceStrength, cfg.DisplaceStrength.Min)
		assert.LessOrEqual(t, rc.DisplaceStrength, cfg.DisplaceStrength.Max)
		assert.GreaterOrEqual(t, rc.CloudsScale, cfg.CloudsScale.Min)
		assert.LessOrEqual(t, rc.CloudsScale, cfg.CloudsScale.Max)
		assert.Equal(t, cfg.DirtLevel, rc.DirtLevel)
		for _, c := range rc.AnchorOffset {
			assert.GreaterOrEqual(t, c, -AnchorRange)
			assert.LessOrEqual(t, c, AnchorRange)
		}
	}
}

func TestIntNCoversBounds(t *testing.T) {
	r := NewRand(7)
	seen := map[int]bool{}
	for i := 0; i < 2000; i++ {
		seen[IntN(r, 0, 4)] = true
	}
	for v := 0; v <= 4; v++ {
		assert.True(t, seen[v], "value %d never drawn", v)
	}
	assert.Equal(t, 3, IntN(r, 3, 3))
}
