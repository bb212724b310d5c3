package main

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) error {
	t.Helper()
	cmd := newRootCmd()
	cmd.SetArgs(append(args, "--log-level", "error"))
	return cmd.ExecuteContext(context.Background())
}

func TestGenerateCommand(t *testing.T) {
	root := t.TempDir()
	scenes := filepath.Join(root, "generated")
	renders := filepath.Join(root, "renders")

	err := execute(t, "generate",
		"--seed", "7",
		"--runs", "3",
		"--frames", "60",
		"--scenes-dir", scenes,
		"--renders-dir", renders,
		"--blender", "--blender-bin", filepath.Join(root, "missing-blender"),
	)
	require.NoError(t, err)

	for _, run := range []string{"run000000", "run000001", "run000002"} {
		assert.FileExists(t, filepath.Join(scenes, run+".yaml"))
		assert.FileExists(t, filepath.Join(scenes, run+".py"))
		assert.DirExists(t, filepath.Join(renders, run))
	}
}

func TestGenerateConfigFile(t *testing.T) {
	root := t.TempDir()
	cfgPath := filepath.Join(root, "batch.yaml")
	yaml := "runs: 1\nscenes_dir: " + filepath.Join(root, "s") + "\nrenders_dir: " + filepath.Join(root, "r") + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(yaml), 0644))

	require.NoError(t, execute(t, "generate", "--config", cfgPath))
	assert.FileExists(t, filepath.Join(root, "s", "run000000.yaml"))
	assert.NoFileExists(t, filepath.Join(root, "s", "run000001.yaml"))
}

func TestGenerateRejectsInvalidConfig(t *testing.T) {
	root := t.TempDir()
	err := execute(t, "generate", "--dirt-level", "11",
		"--scenes-dir", filepath.Join(root, "s"), "--renders-dir", filepath.Join(root, "r"))
	assert.ErrorContains(t, err, "dirt_level")
}

func TestGenerateRenderNeedsBlender(t *testing.T) {
	root := t.TempDir()
	err := execute(t, "generate", "--render",
		"--scenes-dir", filepath.Join(root, "s"), "--renders-dir", filepath.Join(root, "r"))
	assert.Error(t, err)
}

func TestFramesCommand(t *testing.T) {
	root := t.TempDir()
	in := filepath.Join(root, "in")
	require.NoError(t, os.Mkdir(in, 0755))
	for _, name := range []string{"a.png", "b.png"} {
		f, err := os.Create(filepath.Join(in, name))
		require.NoError(t, err)
		require.NoError(t, png.Encode(f, image.NewGray(image.Rect(0, 0, 4, 4))))
		require.NoError(t, f.Close())
	}

	out := filepath.Join(root, "out")
	require.NoError(t, execute(t, "frames", "--input", in, "--out", out, "--name", "set", "--size", "2x2"))
	assert.FileExists(t, filepath.Join(out, "set", "0.JPG"))
	assert.FileExists(t, filepath.Join(out, "set", "1.JPG"))
	assert.NoFileExists(t, filepath.Join(out, "set", "2.JPG"))
}

func TestFramesMissingInput(t *testing.T) {
	err := execute(t, "frames", "--input", filepath.Join(t.TempDir(), "none.mp4"))
	assert.Error(t, err)
}
