package compositor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/dirtsynth/internal/nodegraph"
)

func TestBuild(t *testing.T) {
	g, err := Build()
	require.NoError(t, err)
	require.NoError(t, nodegraph.Validate(g))

	require.Len(t, g.Nodes, 4)
	assert.Len(t, g.Links, 3)
	assert.Equal(t, "composite", g.Terminal().Name)

	// render -> denoise -> alpha_over(foreground) -> composite
	chain := []struct{ node, socket, from string }{
		{"denoise", "Image", "render"},
		{"alpha_over", "Image_001", "denoise"},
		{"composite", "Image", "alpha_over"},
	}
	for _, c := range chain {
		l, ok := g.LinkInto(c.node, c.socket)
		require.True(t, ok, "%s.%s not linked", c.node, c.socket)
		assert.Equal(t, c.from, l.From)
	}

	over, _ := g.Node("alpha_over")
	assert.Equal(t, nodegraph.Value{1, 1, 1, 1}, over.Defaults["Image"])
}
