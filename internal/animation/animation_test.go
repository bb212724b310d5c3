package animation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/dirtsynth/internal/sampler"
)

func TestInsertRejectsOutOfOrder(t *testing.T) {
	s := NewSequence(Target{Object: "o", Property: "p"})
	require.NoError(t, s.Insert(1, 0))
	require.NoError(t, s.Insert(10, 1))

	assert.ErrorIs(t, s.Insert(10, 2), ErrFrameOrder)
	assert.ErrorIs(t, s.Insert(5, 2), ErrFrameOrder)
	assert.Error(t, s.Insert(20, 1, 2))

	// До нормализации ключи имеют интерполяцию хоста по умолчанию
	assert.False(t, s.Linear())
	s.Linearize()
	assert.True(t, s.Linear())
	assert.Equal(t, ExtrapLinear, s.Extrapolation)
}

func TestRotationKeyframes(t *testing.T) {
	r := sampler.NewRand(0)
	for changes := 0; changes <= 4; changes++ {
		seq, err := Rotation(r, RotationParams{Object: "Icosphere", Speed: 180, Changes: changes, Frames: 120, FPS: 30})
		require.NoError(t, err)

		assert.Len(t, seq.Keys, changes+1)
		assert.Equal(t, []float64{0, 0, 0}, seq.Keys[0].Value)
		assert.True(t, seq.Linear())
		require.NoError(t, seq.Validate(1, 120))

		if changes > 0 {
			assert.Equal(t, 120, seq.Keys[len(seq.Keys)-1].Frame)
		}
	}
}

func TestRotationFrames(t *testing.T) {
	assert.Equal(t, 120, RotationFrame(0, 1, 120))
	assert.Equal(t, 40, RotationFrame(0, 3, 120))
	assert.Equal(t, 80, RotationFrame(1, 3, 120))
	assert.Equal(t, 120, RotationFrame(2, 3, 120))
	// 100/3 = 33.33 -> 33, 66.67 -> 67
	assert.Equal(t, 33, RotationFrame(0, 3, 100))
	assert.Equal(t, 67, RotationFrame(1, 3, 100))
}

func TestRotationIsAbsoluteAndBounded(t *testing.T) {
	p := RotationParams{Object: "Icosphere", Speed: 90, Changes: 4, Frames: 120, FPS: 30}
	seq, err := Rotation(sampler.NewRand(3), p)
	require.NoError(t, err)

	// theta <= speed*duration, веса в [0,1): каждая компонента в [0, maxTheta)
	maxTheta := p.Speed * math.Pi / 180 * 4
	for _, k := range seq.Keys[1:] {
		for _, v := range k.Value {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.Less(t, v, maxTheta)
		}
	}

	// Тот же сид дает тот же результат
	again, err := Rotation(sampler.NewRand(3), p)
	require.NoError(t, err)
	assert.Equal(t, seq, again)
}

func TestEvaluate(t *testing.T) {
	s := NewSequence(Target{Node: "mapping", Socket: "Location"})
	require.NoError(t, s.Insert(1, 0, 0, 5))
	require.NoError(t, s.Insert(121, 0, -40, 5))

	tests := []struct {
		frame float64
		y     float64
	}{
		{1, 0},
		{61, -20},
		{121, -40},
		{131, -40}, // constant extrapolation
	}
	for _, tt := range tests {
		v := Evaluate(s, tt.frame)
		assert.InDelta(t, tt.y, v[1], 1e-9, "frame %.0f", tt.frame)
		assert.InDelta(t, 5, v[2], 1e-9)
	}

	s.Linearize()
	assert.InDelta(t, -43.333333, Evaluate(s, 131)[1], 1e-5)
	assert.InDelta(t, 1.0/3.0, Evaluate(s, 0)[1], 1e-9)

	single := NewSequence(Target{})
	require.NoError(t, single.Insert(1, 7))
	assert.Equal(t, []float64{7}, Evaluate(single, 50))
	assert.Nil(t, Evaluate(NewSequence(Target{}), 1))
}
