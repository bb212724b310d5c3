package source

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"

	"go.uber.org/zap"

	"github.com/ivlev/dirtsynth/internal/system"
)

// VideoSource decodes a video through ffmpeg, reading raw RGBA frames from
// its stdout.
type VideoSource struct {
	path   string
	info   system.VideoInfo
	cmd    *exec.Cmd
	cancel context.CancelFunc
	stdout *bufio.Reader
	stderr bytes.Buffer
	pool   *system.ImagePool
	logger *zap.Logger
	done   bool
}

func NewVideoSource(ctx context.Context, path string, logger *zap.Logger) (*VideoSource, error) {
	info, err := system.GetVideoInfo(ctx, path)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	v := &VideoSource{
		path:   path,
		info:   info,
		cancel: cancel,
		pool:   system.NewImagePool(),
		logger: logger,
	}

	v.cmd = exec.CommandContext(ctx, "ffmpeg",
		"-v", "error",
		"-i", path,
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-",
	)
	v.cmd.Stderr = &v.stderr

	stdout, err := v.cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("stdout pipe error: %w", err)
	}
	if err := v.cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}
	v.stdout = bufio.NewReaderSize(stdout, info.Width*info.Height*4)
	return v, nil
}

// Size returns the frame size reported by ffprobe.
func (v *VideoSource) Size() system.VideoInfo {
	return v.info
}

func (v *VideoSource) Next(ctx context.Context) (image.Image, error) {
	if v.done {
		return nil, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img := v.pool.Get(image.Rect(0, 0, v.info.Width, v.info.Height))
	_, err := io.ReadFull(v.stdout, img.Pix)
	switch {
	case err == nil:
		return img, nil
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		v.pool.Put(img)
		if errors.Is(err, io.ErrUnexpectedEOF) {
			v.logger.Warn("Неполный последний кадр отброшен", zap.String("input", v.path))
		}
		v.finish()
		return nil, io.EOF
	default:
		v.pool.Put(img)
		return nil, fmt.Errorf("read frame: %w", err)
	}
}

// finish ждет завершения ffmpeg. Ошибка после конца потока не фатальна.
func (v *VideoSource) finish() {
	v.done = true
	if err := v.cmd.Wait(); err != nil {
		v.logger.Warn("ffmpeg завершился с ошибкой после конца потока",
			zap.String("input", v.path),
			zap.Error(err),
			zap.String("stderr", v.stderr.String()),
		)
	}
}

func (v *VideoSource) Release(img image.Image) {
	if rgba, ok := img.(*image.RGBA); ok {
		v.pool.Put(rgba)
	}
}

func (v *VideoSource) Close() error {
	if !v.done {
		v.cancel()
		v.done = true
		_ = v.cmd.Wait()
	}
	v.cancel()
	return nil
}
