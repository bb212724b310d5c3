package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ivlev/dirtsynth/internal/animation"
	"github.com/ivlev/dirtsynth/internal/config"
	"github.com/ivlev/dirtsynth/internal/host"
	"github.com/ivlev/dirtsynth/internal/material"
	"github.com/ivlev/dirtsynth/internal/nodegraph"
	"github.com/ivlev/dirtsynth/internal/scene"
	"github.com/ivlev/dirtsynth/internal/system"
)

func batchConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
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
		ScenesDir:        filepath.Join(root, "generated"),
		RendersDir:       filepath.Join(root, "renders"),
		Blender:          config.BlenderConfig{DeviceType: "CUDA"},
	}
}

// Минимальное представление дескриптора для проверок
type persisted struct {
	Run    string `yaml:"run"`
	Params struct {
		RotationSpeed   float64 `yaml:"rotation_speed"`
		RotationChanges int     `yaml:"rotation_changes"`
		FallSpeed       float64 `yaml:"fall_speed"`
	} `yaml:"params"`
}

func readPersisted(t *testing.T, cfg *config.Config, run string) persisted {
	t.Helper()
	data, err := os.ReadFile(scene.DescriptorPath(cfg.ScenesDir, run))
	require.NoError(t, err)
	var p persisted
	require.NoError(t, yaml.Unmarshal(data, &p))
	return p
}

func TestBatchSeedZeroTwoRuns(t *testing.T) {
	cfg := batchConfig(t)

	report, err := NewBatchProject(cfg, zap.NewNop(), nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"run000000", "run000001"}, report.Written)
	assert.Empty(t, report.Skipped)

	entries, err := os.ReadDir(cfg.ScenesDir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"run000000.yaml", "run000001.yaml"}, names)

	for _, run := range report.Written {
		dir := scene.RunRenderDir(cfg.RendersDir, run)
		assert.DirExists(t, dir)
		files, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, files)
	}

	a, b := readPersisted(t, cfg, "run000000"), readPersisted(t, cfg, "run000001")
	assert.Equal(t, "run000000", a.Run)
	assert.NotEqual(t, a.Params.RotationSpeed, b.Params.RotationSpeed)
	assert.NotEqual(t, a.Params.FallSpeed, b.Params.FallSpeed)
	assert.NotEqual(t, a.Params.RotationChanges, b.Params.RotationChanges)
	for _, p := range []persisted{a, b} {
		assert.GreaterOrEqual(t, p.Params.RotationSpeed, 60.0)
		assert.LessOrEqual(t, p.Params.RotationSpeed, 360.0)
		assert.GreaterOrEqual(t, p.Params.FallSpeed, 1.0)
		assert.LessOrEqual(t, p.Params.FallSpeed, 10.0)
		assert.GreaterOrEqual(t, p.Params.RotationChanges, 0)
		assert.LessOrEqual(t, p.Params.RotationChanges, 4)
	}
}

func TestBatchRenderRootIsFile(t *testing.T) {
	cfg := batchConfig(t)
	require.NoError(t, os.WriteFile(cfg.RendersDir, []byte("x"), 0644))

	report, err := NewBatchProject(cfg, zap.NewNop(), nil).Run(context.Background())
	assert.ErrorIs(t, err, system.ErrNotDirectory)
	assert.Nil(t, report)

	_, err = os.Stat(scene.DescriptorPath(cfg.ScenesDir, "run000000"))
	assert.True(t, os.IsNotExist(err))
}

func TestBatchScenesRootIsFile(t *testing.T) {
	cfg := batchConfig(t)
	require.NoError(t, os.WriteFile(cfg.ScenesDir, nil, 0644))

	_, err := NewBatchProject(cfg, zap.NewNop(), nil).Run(context.Background())
	assert.ErrorIs(t, err, system.ErrNotDirectory)
}

func TestBatchSkipsRunWithFileInPlace(t *testing.T) {
	clean := batchConfig(t)
	_, err := NewBatchProject(clean, zap.NewNop(), nil).Run(context.Background())
	require.NoError(t, err)

	cfg := batchConfig(t)
	cfg.Runs = 3
	require.NoError(t, os.MkdirAll(cfg.RendersDir, 0755))
	require.NoError(t, os.WriteFile(scene.RunRenderDir(cfg.RendersDir, "run000000"), nil, 0644))

	report, err := NewBatchProject(cfg, zap.NewNop(), nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"run000000"}, report.Skipped)
	assert.Equal(t, []string{"run000001", "run000002"}, report.Written)

	_, err = os.Stat(scene.DescriptorPath(cfg.ScenesDir, "run000000"))
	assert.True(t, os.IsNotExist(err))

	// Пропуск не расходует выборки: run000001 получает параметры чистого run000000
	skipped := readPersisted(t, cfg, "run000001")
	first := readPersisted(t, clean, "run000000")
	assert.Equal(t, first.Params, skipped.Params)
}

func TestBatchIsIdempotent(t *testing.T) {
	cfg := batchConfig(t)
	p := NewBatchProject(cfg, zap.NewNop(), nil)

	_, err := p.Run(context.Background())
	require.NoError(t, err)
	before, err := os.ReadFile(scene.DescriptorPath(cfg.ScenesDir, "run000001"))
	require.NoError(t, err)

	report, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, report.Written, 2)

	after, err := os.ReadFile(scene.DescriptorPath(cfg.ScenesDir, "run000001"))
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestBatchSlateAndStats(t *testing.T) {
	cfg := batchConfig(t)
	cfg.Runs = 1
	cfg.Slate = true
	cfg.ShowStats = true

	_, err := NewBatchProject(cfg, zap.NewNop(), nil).Run(context.Background())
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(cfg.ScenesDir, "run000000.png"))
	assert.FileExists(t, filepath.Join(cfg.ScenesDir, "batch.log"))
}

func TestBatchCancelled(t *testing.T) {
	cfg := batchConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := NewBatchProject(cfg, zap.NewNop(), nil).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, report.Written)
}

// countingHost считает сохранения и рендеры.
type countingHost struct {
	saved    []string
	rendered []string
}

func (h *countingHost) Reset(context.Context, scene.RenderSettings) error         { return nil }
func (h *countingHost) SetWorld(context.Context, scene.World) error               { return nil }
func (h *countingHost) CreateMaterial(context.Context, *material.Material) error  { return nil }
func (h *countingHost) CreateTexture(context.Context, scene.Texture) error        { return nil }
func (h *countingHost) CreateObject(context.Context, *scene.Object) error         { return nil }
func (h *countingHost) AssignMaterial(context.Context, string, string) error      { return nil }
func (h *countingHost) Animate(context.Context, string, *animation.Sequence) error { return nil }
func (h *countingHost) AddModifier(context.Context, string, scene.Modifier) error { return nil }
func (h *countingHost) SetCompositor(context.Context, *nodegraph.Graph) error     { return nil }

func (h *countingHost) Save(_ context.Context, path string) error {
	h.saved = append(h.saved, filepath.Base(path))
	return nil
}

func (h *countingHost) Render(_ context.Context, path string) error {
	h.rendered = append(h.rendered, filepath.Base(path))
	return nil
}

func TestBatchReplaysOnHost(t *testing.T) {
	cfg := batchConfig(t)
	cfg.Blender.Render = true
	h := &countingHost{}

	factory := func() (host.Host, error) { return h, nil }
	_, err := NewBatchProject(cfg, zap.NewNop(), factory).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"run000000.blend", "run000001.blend"}, h.saved)
	assert.Equal(t, h.saved, h.rendered)
}
