// Package material builds the two shader graphs of a scene: the volumetric
// spheroid material and the animated dirt screen material.
package material

import (
	"fmt"
	"math/rand/v2"

	"github.com/ivlev/dirtsynth/internal/animation"
	"github.com/ivlev/dirtsynth/internal/nodegraph"
)

const (
	SpheroidName = "SpheroidMaterial"
	ScreenName   = "ScreenMaterial"

	// Плотность и цвет сфероида
	SpheroidDensity = 2.0

	// Порог грязи: bias = (10 - dirt) * DirtStep + DirtBase, затем степень
	DirtStep     = 0.01
	DirtBase     = 0.7
	DirtSharpen  = 100.0
	MaxDirtLevel = 10

	// Случайное начальное смещение по Z (поперек направления прокрутки)
	ScrollZRange = 100.0
)

// SpheroidColor is the near-black base color of the spheroid volume.
var SpheroidColor = [4]float64{0.11, 0.11, 0.11, 1.0}

// Material is a named shader graph with the keyframe sequences that animate
// its node inputs.
type Material struct {
	Name      string                `yaml:"name"`
	Graph     *nodegraph.Graph      `yaml:"graph"`
	Animation []*animation.Sequence `yaml:"animation,omitempty"`
}

// Spheroid builds the volume material: a principled volume node feeding the
// output's volume input.
func Spheroid() (*Material, error) {
	g, err := nodegraph.NewBuilder(SpheroidName).
		Add("volume", nodegraph.KindPrincipledVolume, -600, 0).
		SetDefault("volume", "Color", SpheroidColor[:]...).
		SetDefault("volume", "Density", SpheroidDensity).
		Add("output", nodegraph.KindMaterialOutput, 0, 0).
		Link("volume", "Volume", "output", "Volume").
		Build()
	if err != nil {
		return nil, err
	}
	return &Material{Name: SpheroidName, Graph: g}, nil
}

// ScreenParams are the numeric inputs of the screen material.
type ScreenParams struct {
	DirtLevel int
	FallSpeed float64
	Frames    int
	FPS       int
	// ScrollZ is the randomized start offset orthogonal to the scroll
	// direction, see SampleScrollZ.
	ScrollZ float64
}

// SampleScrollZ draws the scroll start offset. It must be called exactly once
// per run.
func SampleScrollZ(r *rand.Rand) float64 {
	return -ScrollZRange + r.Float64()*2*ScrollZRange
}

// DirtBias returns the additive noise bias for a dirt level: a higher level
// gives a lower bias and more visible dirt.
func DirtBias(level int) float64 {
	return float64(MaxDirtLevel-level)*DirtStep + DirtBase
}

// Screen builds the dirt material of the screen plane.
//
// Шум в объектных координатах, сдвинутый mapping-узлом; к шуму прибавляется
// bias уровня грязи, результат возводится в степень 100 и инвертируется в
// альфу черного BSDF. Location mapping-узла анимируется: на кадре 1
// (0, 0, z), на последнем (0, -fallSpeed*duration, z).
func Screen(p ScreenParams) (*Material, error) {
	if p.DirtLevel < 0 || p.DirtLevel > MaxDirtLevel {
		return nil, fmt.Errorf("dirt level %d out of [0, %d]", p.DirtLevel, MaxDirtLevel)
	}

	g, err := nodegraph.NewBuilder(ScreenName).
		Add("coords", nodegraph.KindTexCoord, -2880, 60).
		Add("mapping", nodegraph.KindMapping, -2520, 60).
		SetDefault("mapping", "Location", 0, 0, p.ScrollZ).
		Add("noise", nodegraph.KindNoiseTexture, -1980, 60).
		SetDefault("noise", "Scale", 10).
		SetDefault("noise", "Detail", 2).
		SetDefault("noise", "Roughness", 0.5).
		SetDefault("noise", "Distortion", 0.5).
		Add("dirt", nodegraph.KindValue, -2340, -540).
		SetOutput("dirt", float64(MaxDirtLevel-p.DirtLevel)).
		Add("bias", nodegraph.KindMath, -1980, -300).
		SetOperation("bias", nodegraph.OpMultiplyAdd).
		SetDefault("bias", "Value_001", DirtStep).
		SetDefault("bias", "Value_002", DirtBase).
		Add("add", nodegraph.KindMath, -1560, 0).
		SetOperation("add", nodegraph.OpAdd).
		Add("power", nodegraph.KindMath, -1260, 0).
		SetOperation("power", nodegraph.OpPower).
		SetDefault("power", "Value_001", DirtSharpen).
		Add("invert", nodegraph.KindInvert, -900, 0).
		SetDefault("invert", "Fac", 1).
		Add("bsdf", nodegraph.KindPrincipledBSDF, -420, 0).
		SetDefault("bsdf", "Base Color", 0, 0, 0, 1).
		SetDefault("bsdf", "Metallic", 0).
		SetDefault("bsdf", "Roughness", 0).
		Add("output", nodegraph.KindMaterialOutput, 0, 0).
		Link("coords", "Object", "mapping", "Vector").
		Link("mapping", "Vector", "noise", "Vector").
		Link("dirt", "Value", "bias", "Value").
		Link("noise", "Fac", "add", "Value").
		Link("bias", "Value", "add", "Value_001").
		Link("add", "Value", "power", "Value").
		Link("power", "Value", "invert", "Color").
		Link("invert", "Color", "bsdf", "Alpha").
		Link("bsdf", "BSDF", "output", "Surface").
		Build()
	if err != nil {
		return nil, err
	}

	scroll, err := scrollSequence(p)
	if err != nil {
		return nil, err
	}

	return &Material{
		Name:      ScreenName,
		Graph:     g,
		Animation: []*animation.Sequence{scroll},
	}, nil
}

func scrollSequence(p ScreenParams) (*animation.Sequence, error) {
	seq := animation.NewSequence(animation.Target{Node: "mapping", Socket: "Location"})
	if err := seq.Insert(1, 0, 0, p.ScrollZ); err != nil {
		return nil, err
	}

	fall := -p.FallSpeed * float64(p.Frames) / float64(p.FPS)
	if err := seq.Insert(p.Frames, 0, fall, p.ScrollZ); err != nil {
		return nil, fmt.Errorf("scroll keyframes: %w", err)
	}

	seq.Linearize()
	return seq, nil
}
