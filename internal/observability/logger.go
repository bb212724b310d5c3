package observability

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ivlev/dirtsynth/internal/config"
)

var (
	mu     sync.Mutex
	global *zap.Logger
)

// NewLogger builds a zap logger writing to w. Format "json" gives structured
// output, anything else a single-line console format.
func NewLogger(cfg config.LogConfig, w zapcore.WriteSyncer) *zap.Logger {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level.SetLevel(zap.InfoLevel)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")

	var enc zapcore.Encoder
	if cfg.Format == "json" {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	return zap.New(zapcore.NewCore(enc, w, level), zap.AddStacktrace(zap.ErrorLevel))
}

// Initialize настраивает глобальный логгер процесса (stderr).
func Initialize(cfg config.LogConfig) *zap.Logger {
	mu.Lock()
	defer mu.Unlock()

	global = NewLogger(cfg, zapcore.Lock(os.Stderr))
	zap.ReplaceGlobals(global)
	return global
}

// GetLogger returns the process logger, or a no-op logger before Initialize.
func GetLogger() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()

	if global == nil {
		return zap.NewNop()
	}
	return global
}
