// Package source reads frame sequences for the frame extraction utility:
// decoded video, rasterized documents and image directories.
package source

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"

	"github.com/ivlev/dirtsynth/internal/system"
)

// Source is a sequential stream of frames. Next returns io.EOF after the
// last frame. Frames handed out by Next may be recycled once passed to
// Release.
type Source interface {
	Next(ctx context.Context) (image.Image, error)
	Release(img image.Image)
	Close() error
}

var (
	VideoExts    = []string{".mp4", ".mov", ".mkv", ".avi", ".webm", ".m4v"}
	DocumentExts = []string{".pdf", ".cbz", ".epub", ".xps"}
	ImageExts    = []string{".jpg", ".jpeg", ".png"}
)

// Open picks the source for path: a directory is read as an image sequence,
// documents are rasterized at dpi, anything else goes through ffmpeg.
func Open(ctx context.Context, path string, dpi int, logger *zap.Logger) (Source, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	switch {
	case fi.IsDir():
		return NewImageSource(path)
	case system.HasExt(path, DocumentExts):
		return NewDocumentSource(path, dpi)
	case system.HasExt(path, ImageExts):
		return NewImageSource(path)
	default:
		return NewVideoSource(ctx, path, logger)
	}
}

// DocumentSource rasterizes document pages one by one with MuPDF.
type DocumentSource struct {
	doc  *fitz.Document
	dpi  float64
	next int
}

func NewDocumentSource(path string, dpi int) (*DocumentSource, error) {
	if dpi <= 0 {
		return nil, fmt.Errorf("некорректный DPI %d", dpi)
	}
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &DocumentSource{doc: doc, dpi: float64(dpi)}, nil
}

func (d *DocumentSource) PageCount() int {
	return d.doc.NumPage()
}

func (d *DocumentSource) Next(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.next >= d.doc.NumPage() {
		return nil, io.EOF
	}
	img, err := d.doc.ImageDPI(d.next, d.dpi)
	if err != nil {
		return nil, fmt.Errorf("страница %d: %w", d.next, err)
	}
	d.next++
	return img, nil
}

func (d *DocumentSource) Release(image.Image) {}

func (d *DocumentSource) Close() error {
	return d.doc.Close()
}
