// Package compositor builds the post-processing graph applied to every
// rendered frame.
package compositor

import (
	"github.com/ivlev/dirtsynth/internal/nodegraph"
)

const GraphName = "Compositor"

// Background is the color the render is flattened against.
var Background = [4]float64{1, 1, 1, 1}

// Build returns the fixed pipeline render layers -> denoise -> alpha over
// (render over white, using the render's alpha) -> composite.
func Build() (*nodegraph.Graph, error) {
	return nodegraph.NewBuilder(GraphName).
		Add("render", nodegraph.KindRenderLayers, -1260, 0).
		Add("denoise", nodegraph.KindDenoise, -900, 0).
		Add("alpha_over", nodegraph.KindAlphaOver, -420, 0).
		SetDefault("alpha_over", "Fac", 1).
		SetDefault("alpha_over", "Image", Background[:]...).
		Add("composite", nodegraph.KindComposite, 0, 0).
		Link("render", "Image", "denoise", "Image").
		Link("denoise", "Image", "alpha_over", "Image_001").
		Link("alpha_over", "Image", "composite", "Image").
		Build()
}
