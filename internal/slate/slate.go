// Package slate writes a QR image identifying a run next to its descriptor.
package slate

import (
	"fmt"
	"path/filepath"

	"github.com/skip2/go-qrcode"
)

// Size is the edge of the slate image in pixels.
const Size = 256

// Content is the text encoded into the slate of a run.
func Content(run, id string, seed uint64) string {
	return fmt.Sprintf("dirtsynth run=%s id=%s seed=%d", run, id, seed)
}

// Path returns the slate file of a run.
func Path(scenesDir, run string) string {
	return filepath.Join(scenesDir, run+".png")
}

// Write renders the slate PNG to path.
func Write(path, run, id string, seed uint64) error {
	if err := qrcode.WriteFile(Content(run, id, seed), qrcode.Medium, Size, path); err != nil {
		return fmt.Errorf("slate %s: %w", run, err)
	}
	return nil
}
