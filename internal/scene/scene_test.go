package scene

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/dirtsynth/internal/config"
	"github.com/ivlev/dirtsynth/internal/material"
	"github.com/ivlev/dirtsynth/internal/nodegraph"
	"github.com/ivlev/dirtsynth/internal/sampler"
)

func testConfig() *config.Config {
	return &config.Config{
		Seed:             0,
		Runs:             2,
		Resolution:       512,
		Frames:           120,
		FPS:              30,
		FileFormat:       "JPEG",
		DirtLevel:        9,
		RotationSpeed:    config.Range{Min: 60, Max: 360},
		RotationChanges:  config.IntRange{Min: 0, Max: 4},
		FallSpeed:        config.Range{Min: 1, Max: 10},
		DisplaceStrength: config.Range{Min: 0.2, Max: 2},
		CloudsScale:      config.Range{Min: 1, Max: 2},
		ScenesDir:        "generated",
		RendersDir:       "renders",
		Blender:          config.BlenderConfig{DeviceType: "CUDA"},
	}
}

func assembleBatch(t *testing.T, cfg *config.Config) []*Descriptor {
	t.Helper()
	s := sampler.New(cfg)
	a := NewAssembler(cfg)

	var out []*Descriptor
	for i := 0; i < cfg.Runs; i++ {
		d, err := a.Assemble(RunName(i), s.Next(), s.Rand())
		require.NoError(t, err)
		out = append(out, d)
	}
	return out
}

func TestAssembleIsDeterministic(t *testing.T) {
	cfg := testConfig()
	cfg.Runs = 5

	first := assembleBatch(t, cfg)
	second := assembleBatch(t, cfg)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("batch not reproducible (-first +second):\n%s", diff)
	}
}

func TestAssembleStructure(t *testing.T) {
	cfg := testConfig()
	d := assembleBatch(t, cfg)[0]

	assert.Equal(t, "run000000", d.Run)
	assert.Equal(t, RunID(0, "run000000"), d.ID)
	assert.Equal(t, 512, d.Render.ResolutionX)
	assert.Equal(t, 120, d.Render.FrameEnd)
	assert.True(t, d.Render.FilmTransparent)
	assert.Equal(t, filepath.Join("renders", "run000000", "frame"), d.Render.OutputPath)
	assert.Equal(t, [4]float64{1, 1, 1, 1}, d.World.Color)

	cam, ok := d.Object(CameraName)
	require.True(t, ok)
	assert.Equal(t, "ORTHO", cam.Camera.Projection)
	assert.Empty(t, cam.Parent)

	screen, ok := d.Object(ScreenName)
	require.True(t, ok)
	assert.Equal(t, CameraName, screen.Parent)
	assert.Equal(t, material.ScreenName, screen.Material)

	sph, ok := d.Object(SpheroidName)
	require.True(t, ok)
	assert.Equal(t, CameraName, sph.Parent)
	assert.Equal(t, 3, sph.Mesh.Subdivisions)
	require.Len(t, sph.Modifiers, 2)
	assert.Equal(t, ModifierSubsurf, sph.Modifiers[0].Kind)
	assert.Equal(t, ModifierDisplace, sph.Modifiers[1].Kind)
	assert.Equal(t, AnchorName, sph.Modifiers[1].CoordsObject)
	assert.Equal(t, d.Params.DisplaceStrength, sph.Modifiers[1].Strength)

	anchor, ok := d.Object(AnchorName)
	require.True(t, ok)
	assert.Equal(t, SpheroidName, anchor.Parent)
	assert.Equal(t, d.Params.AnchorOffset, anchor.Transform.Location)

	require.Len(t, d.Textures, 1)
	assert.Equal(t, d.Params.CloudsScale, d.Textures[0].NoiseScale)

	require.Len(t, sph.Animation, 1)
	rot := sph.Animation[0]
	assert.Len(t, rot.Keys, d.Params.RotationChanges+1)
	assert.True(t, rot.Linear())
	assert.NoError(t, rot.Validate(1, cfg.Frames))

	screenMat, ok := d.Material(material.ScreenName)
	require.True(t, ok)
	require.Len(t, screenMat.Animation, 1)
	assert.True(t, screenMat.Animation[0].Linear())

	for _, m := range d.Materials {
		assert.NoError(t, nodegraph.Validate(m.Graph), m.Name)
	}
	assert.NoError(t, nodegraph.Validate(d.Compositor))
}

// eulerXYZ rotates v by Euler angles applied X, then Y, then Z.
func eulerXYZ(rot, v [3]float64) [3]float64 {
	sx, cx := math.Sincos(rot[0])
	sy, cy := math.Sincos(rot[1])
	sz, cz := math.Sincos(rot[2])
	v = [3]float64{v[0], cx*v[1] - sx*v[2], sx*v[1] + cx*v[2]}
	v = [3]float64{cy*v[0] + sy*v[2], v[1], -sy*v[0] + cy*v[2]}
	return [3]float64{cz*v[0] - sz*v[1], sz*v[0] + cz*v[1], v[2]}
}

func worldLocation(d *Descriptor, obj *Object) [3]float64 {
	loc := obj.Transform.Location
	for obj.Parent != "" {
		parent, _ := d.Object(obj.Parent)
		loc = eulerXYZ(parent.Transform.Rotation, loc)
		for i := range loc {
			loc[i] += parent.Transform.Location[i]
		}
		obj = parent
	}
	return loc
}

func TestCameraFraming(t *testing.T) {
	d := assembleBatch(t, testConfig())[0]
	cam, ok := d.Object(CameraName)
	require.True(t, ok)

	view := eulerXYZ(cam.Transform.Rotation, [3]float64{0, 0, -1})
	assert.InDeltaSlice(t, []float64{0, 1, 0}, view[:], 1e-9, "camera looks along +Y")

	depth := func(name string) float64 {
		obj, ok := d.Object(name)
		require.True(t, ok, name)
		w := worldLocation(d, obj)
		var dot float64
		for i := range w {
			dot += (w[i] - cam.Transform.Location[i]) * view[i]
		}
		return dot
	}

	screenDepth, spheroidDepth := depth(ScreenName), depth(SpheroidName)
	assert.Greater(t, screenDepth, cam.Camera.ClipStart)
	assert.Greater(t, spheroidDepth, screenDepth, "spheroid is behind the screen")

	screen, _ := d.Object(ScreenName)
	w := worldLocation(d, screen)
	assert.InDeltaSlice(t, []float64{0, -4.9, 0}, w[:], 1e-9)
	normal := eulerXYZ(cam.Transform.Rotation, eulerXYZ(screen.Transform.Rotation, [3]float64{0, 0, 1}))
	assert.InDeltaSlice(t, []float64{0, -1, 0}, normal[:], 1e-9, "screen faces the camera")

	sph, _ := d.Object(SpheroidName)
	w = worldLocation(d, sph)
	assert.InDeltaSlice(t, []float64{0, 0, 0}, w[:], 1e-9)
}

func TestScenarioSeedZeroTwoRuns(t *testing.T) {
	cfg := testConfig()
	ds := assembleBatch(t, cfg)
	require.Len(t, ds, 2)

	assert.Equal(t, "run000000", ds[0].Run)
	assert.Equal(t, "run000001", ds[1].Run)
	assert.NotEqual(t, ds[0].ID, ds[1].ID)

	for _, d := range ds {
		assert.GreaterOrEqual(t, d.Params.RotationChanges, 0)
		assert.LessOrEqual(t, d.Params.RotationChanges, 4)
		assert.Equal(t, 9, d.Params.DirtLevel)
	}
	assert.NotEqual(t, ds[0].Params.RotationSpeed, ds[1].Params.RotationSpeed)
	assert.NotEqual(t, ds[0].Params.FallSpeed, ds[1].Params.FallSpeed)
	assert.NotEqual(t, ds[0].Params.RotationChanges, ds[1].Params.RotationChanges)
	assert.Equal(t, 4, ds[0].Params.RotationChanges)
	assert.Equal(t, 2, ds[1].Params.RotationChanges)
}

func TestAssembleShortestAnimation(t *testing.T) {
	cfg := testConfig()
	cfg.Frames = 2
	cfg.RotationChanges = config.IntRange{}
	require.NoError(t, cfg.Validate())

	d := assembleBatch(t, cfg)[0]
	screenMat, ok := d.Material(material.ScreenName)
	require.True(t, ok)
	keys := screenMat.Animation[0].Keys
	require.Len(t, keys, 2)
	assert.Equal(t, 1, keys[0].Frame)
	assert.Equal(t, 2, keys[1].Frame)
}

func TestWriteDescriptor(t *testing.T) {
	d := assembleBatch(t, testConfig())[0]
	path := DescriptorPath(t.TempDir(), d.Run)

	require.NoError(t, WriteDescriptor(d, path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	text := string(data)
	assert.True(t, strings.HasPrefix(text, "version: \"1.0\""), text[:40])
	assert.Contains(t, text, "run: run000000")
	assert.Contains(t, text, "kind: principled_volume")
	assert.Contains(t, text, "interpolation: LINEAR")
	assert.Contains(t, text, "handle_left: VECTOR")
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "run000000", RunName(0))
	assert.Equal(t, "run000123", RunName(123))
	assert.Equal(t, filepath.Join("gen", "run000001.yaml"), DescriptorPath("gen", "run000001"))
	assert.Equal(t, RunID(5, "run000001"), RunID(5, "run000001"))
	assert.NotEqual(t, RunID(5, "run000001"), RunID(6, "run000001"))
}
