package system

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// ErrNotDirectory is returned when a required directory path is occupied by
// something else.
var ErrNotDirectory = errors.New("path exists and is not a directory")

// EnsureDir creates path with its parents. An existing directory is fine; an
// existing file at path is ErrNotDirectory.
func EnsureDir(path string) error {
	fi, err := os.Stat(path)
	switch {
	case err == nil:
		if !fi.IsDir() {
			return fmt.Errorf("%s: %w", path, ErrNotDirectory)
		}
		return nil
	case errors.Is(err, syscall.ENOTDIR):
		return fmt.Errorf("%s: %w", path, ErrNotDirectory)
	case !errors.Is(err, os.ErrNotExist):
		return err
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		// MkdirAll отдает ENOTDIR, если файлом занят один из родителей
		if errors.Is(err, syscall.ENOTDIR) {
			return fmt.Errorf("%s: %w", path, ErrNotDirectory)
		}
		return err
	}
	return nil
}

func InitResourceLimits(logger *zap.Logger) {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		logger.Warn("Не удалось получить лимит файлов", zap.Error(err))
		return
	}

	if rLimit.Cur >= 2048 {
		return
	}
	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		logger.Warn("Не удалось установить лимит файлов", zap.Error(err))
	} else {
		logger.Debug("Лимит открытых файлов увеличен", zap.Uint64("nofile", uint64(rLimit.Cur)))
	}
}

// FindBinary resolves an external tool. A non-empty override wins over PATH.
func FindBinary(name, override string) (string, error) {
	if override != "" {
		if _, err := os.Stat(override); err != nil {
			return "", fmt.Errorf("%s: %w", name, err)
		}
		return override, nil
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%s не найден в PATH: %w", name, err)
	}
	return path, nil
}

// FindLatest returns the most recently modified file in dir whose extension
// is one of exts (lower case, with dot).
func FindLatest(dir string, exts []string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() || !HasExt(f.Name(), exts) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("в папке %s не найдено файлов %s", dir, strings.Join(exts, " "))
	}

	return latestFile, nil
}

// HasExt reports whether name ends with one of exts, case-insensitively.
func HasExt(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// VideoInfo is the probed geometry of the first video stream.
type VideoInfo struct {
	Width  int
	Height int
}

// GetVideoInfo reads the frame size of a video with ffprobe.
func GetVideoInfo(ctx context.Context, path string) (VideoInfo, error) {
	cmd := exec.CommandContext(ctx, "ffprobe", "-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "csv=s=x:p=0",
		path)
	out, err := cmd.Output()
	if err != nil {
		return VideoInfo{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return parseVideoInfo(string(out))
}

func parseVideoInfo(out string) (VideoInfo, error) {
	var info VideoInfo
	line := strings.TrimSpace(strings.SplitN(strings.TrimSpace(out), "\n", 2)[0])
	if _, err := fmt.Sscanf(line, "%dx%d", &info.Width, &info.Height); err != nil {
		return VideoInfo{}, fmt.Errorf("не удалось разобрать размер кадра %q: %w", line, err)
	}
	if info.Width <= 0 || info.Height <= 0 {
		return VideoInfo{}, fmt.Errorf("некорректный размер кадра %dx%d", info.Width, info.Height)
	}
	return info, nil
}
