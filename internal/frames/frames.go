// Package frames writes a frame source out as numbered JPEG files:
// 0.JPG, 1.JPG, ... in <out>/<name>.
package frames

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
	"go.uber.org/zap"

	"github.com/ivlev/dirtsynth/internal/config"
	"github.com/ivlev/dirtsynth/internal/source"
	"github.com/ivlev/dirtsynth/internal/system"
)

// DefaultQuality matches the JPEG quality of common video tooling.
const DefaultQuality = 95

// Result summarizes one extraction.
type Result struct {
	Dir    string
	Frames int
}

type Extractor struct {
	Params config.FrameParams
	Logger *zap.Logger
}

func NewExtractor(p config.FrameParams, logger *zap.Logger) *Extractor {
	if p.Quality <= 0 || p.Quality > 100 {
		p.Quality = DefaultQuality
	}
	p.Workers = system.WorkerCount(p.Workers)
	return &Extractor{Params: p, Logger: logger.Named("frames")}
}

// FramePath returns the file of frame i inside dir.
func FramePath(dir string, i int) string {
	return filepath.Join(dir, strconv.Itoa(i)+".JPG")
}

// Run reads src to its end and encodes every frame. Existing files with the
// same names are overwritten.
func (e *Extractor) Run(ctx context.Context, src source.Source) (Result, error) {
	dir := filepath.Join(e.Params.OutDir, e.Params.Name)
	if err := system.EnsureDir(dir); err != nil {
		return Result{}, fmt.Errorf("каталог кадров: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.Params.Workers)

	count := 0
	var readErr error
	for {
		img, err := src.Next(gctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			readErr = err
			break
		}

		i := count
		count++
		g.Go(func() error {
			defer src.Release(img)
			return e.writeFrame(FramePath(dir, i), img)
		})
		e.Logger.Debug("Кадр прочитан", zap.Int("frame", i))
	}

	if err := g.Wait(); err != nil {
		return Result{Dir: dir, Frames: count}, err
	}
	if readErr != nil {
		return Result{Dir: dir, Frames: count}, fmt.Errorf("чтение кадра %d: %w", count, readErr)
	}

	e.Logger.Info("Раскадровка завершена", zap.String("dir", dir), zap.Int("frames", count))
	return Result{Dir: dir, Frames: count}, nil
}

func (e *Extractor) writeFrame(path string, img image.Image) error {
	if e.Params.Width > 0 && e.Params.Height > 0 {
		img = Resize(img, e.Params.Width, e.Params.Height)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: e.Params.Quality}); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// Resize scales img to w x h with Catmull-Rom filtering.
func Resize(img image.Image, w, h int) image.Image {
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// ParseSize parses "WxH". An empty string means no resize.
func ParseSize(s string) (int, int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, nil
	}
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("размер %q: ожидается WxH", s)
	}
	w, err := strconv.Atoi(ws)
	if err != nil {
		return 0, 0, fmt.Errorf("размер %q: %w", s, err)
	}
	h, err := strconv.Atoi(hs)
	if err != nil {
		return 0, 0, fmt.Errorf("размер %q: %w", s, err)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("размер %q: стороны должны быть положительными", s)
	}
	return w, h, nil
}
