package animation

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// RotationParams drives the spheroid rotation keys.
type RotationParams struct {
	Object  string
	Speed   float64 // градусы в секунду
	Changes int
	Frames  int
	FPS     int
}

// RotationFrame returns the frame of the change with index i (0-based).
func RotationFrame(i, changes, frames int) int {
	return int(math.Round(float64((i+1)*frames) / float64(changes)))
}

// Rotation builds the rotation_euler sequence of the spheroid.
//
// Ключ на кадре 1 всегда (0,0,0). Для каждой смены оси берутся свежие веса
// по осям и модуль угла theta = rand * speed * duration, и ориентация
// задается абсолютно: weights * theta, а не приращением к предыдущей.
// Из-за этого между сегментами возможен резкий разворот назад; это
// характеристика датасета.
//
// Each change consumes exactly four draws from r: three weights, then the
// magnitude.
func Rotation(r *rand.Rand, p RotationParams) (*Sequence, error) {
	seq := NewSequence(Target{Object: p.Object, Property: "rotation_euler"})
	if err := seq.Insert(1, 0, 0, 0); err != nil {
		return nil, err
	}

	duration := float64(p.Frames) / float64(p.FPS)
	speed := p.Speed * math.Pi / 180

	for i := 0; i < p.Changes; i++ {
		w := [3]float64{r.Float64(), r.Float64(), r.Float64()}
		theta := r.Float64() * speed * duration

		frame := RotationFrame(i, p.Changes, p.Frames)
		if err := seq.Insert(frame, w[0]*theta, w[1]*theta, w[2]*theta); err != nil {
			return nil, fmt.Errorf("rotation change %d: %w", i, err)
		}
	}

	seq.Linearize()
	return seq, nil
}
