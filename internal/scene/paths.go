package scene

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
)

// RunName returns the zero-padded name of run i, e.g. run000007.
func RunName(i int) string {
	return fmt.Sprintf("run%06d", i)
}

// DescriptorPath returns the persisted descriptor path of a run.
func DescriptorPath(scenesDir, run string) string {
	return filepath.Join(scenesDir, run+".yaml")
}

// RunRenderDir returns the render output directory of a run.
func RunRenderDir(rendersDir, run string) string {
	return filepath.Join(rendersDir, run)
}

// RunID derives a stable identifier from the batch seed and the run name, so
// regenerating a batch yields the same IDs.
func RunID(seed uint64, run string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("dirtsynth/%d/%s", seed, run))).String()
}
