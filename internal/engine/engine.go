package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/ivlev/dirtsynth/internal/config"
	"github.com/ivlev/dirtsynth/internal/host"
	"github.com/ivlev/dirtsynth/internal/material"
	"github.com/ivlev/dirtsynth/internal/sampler"
	"github.com/ivlev/dirtsynth/internal/scene"
	"github.com/ivlev/dirtsynth/internal/slate"
	"github.com/ivlev/dirtsynth/internal/system"
)

// HostFactory returns a fresh host for one run.
type HostFactory func() (host.Host, error)

// BatchProject generates every run of a batch, strictly in order, from one
// random stream.
type BatchProject struct {
	Config  *config.Config
	Logger  *zap.Logger
	NewHost HostFactory // nil: только дескрипторы
}

func NewBatchProject(cfg *config.Config, logger *zap.Logger, newHost HostFactory) *BatchProject {
	return &BatchProject{
		Config:  cfg,
		Logger:  logger.Named("engine"),
		NewHost: newHost,
	}
}

// Report summarizes a finished batch.
type Report struct {
	Written  []string
	Skipped  []string
	Elapsed  time.Duration
	Snapshot system.Snapshot
}

// Run creates the scene and render roots and then processes every run. A
// root occupied by a file aborts the batch before any run. A run whose
// render directory is occupied by a file is skipped without consuming
// random draws.
func (p *BatchProject) Run(ctx context.Context) (*Report, error) {
	startTime := time.Now()
	cfg := p.Config

	for _, root := range []string{cfg.ScenesDir, cfg.RendersDir} {
		if err := system.EnsureDir(root); err != nil {
			return nil, fmt.Errorf("корневой каталог: %w", err)
		}
	}

	p.Logger.Info("Старт генерации",
		zap.Uint64("seed", cfg.Seed),
		zap.Int("runs", cfg.Runs),
		zap.Int("frames", cfg.Frames),
		zap.Int("fps", cfg.FPS),
		zap.Int("dirt_level", cfg.DirtLevel),
		zap.Float64("dirt_bias", material.DirtBias(cfg.DirtLevel)),
	)

	smp := sampler.New(cfg)
	asm := scene.NewAssembler(cfg)
	report := &Report{}

	for i := 0; i < cfg.Runs; i++ {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		run := scene.RunName(i)
		renderDir := scene.RunRenderDir(cfg.RendersDir, run)
		if err := system.EnsureDir(renderDir); err != nil {
			if errors.Is(err, system.ErrNotDirectory) {
				p.Logger.Error("Запуск пропущен: путь рендера занят файлом",
					zap.String("run", run),
					zap.String("path", renderDir),
				)
				report.Skipped = append(report.Skipped, run)
				continue
			}
			return report, fmt.Errorf("%s: %w", run, err)
		}

		if err := p.generate(ctx, run, smp, asm); err != nil {
			return report, err
		}
		report.Written = append(report.Written, run)
	}

	report.Elapsed = time.Since(startTime)
	report.Snapshot = system.TakeSnapshot()

	if cfg.ShowStats {
		p.writeStats(report)
	}
	return report, nil
}

func (p *BatchProject) generate(ctx context.Context, run string, smp *sampler.Sampler, asm *scene.Assembler) error {
	cfg := p.Config

	rc := smp.Next()
	d, err := asm.Assemble(run, rc, smp.Rand())
	if err != nil {
		return err
	}

	path := scene.DescriptorPath(cfg.ScenesDir, run)
	if err := scene.WriteDescriptor(d, path); err != nil {
		return fmt.Errorf("%s: запись сцены: %w", run, err)
	}

	p.Logger.Info("Сцена сгенерирована",
		zap.String("run", run),
		zap.String("id", d.ID),
		zap.String("path", path),
		zap.Float64("rotation_speed", rc.RotationSpeed),
		zap.Int("rotation_changes", rc.RotationChanges),
		zap.Float64("fall_speed", rc.FallSpeed),
		zap.Float64("displace_strength", rc.DisplaceStrength),
		zap.Float64("clouds_scale", rc.CloudsScale),
	)

	if cfg.Slate {
		if err := slate.Write(slate.Path(cfg.ScenesDir, run), run, d.ID, cfg.Seed); err != nil {
			return err
		}
	}

	if p.NewHost == nil {
		return nil
	}
	return p.replay(ctx, run, d)
}

func (p *BatchProject) replay(ctx context.Context, run string, d *scene.Descriptor) error {
	h, err := p.NewHost()
	if err != nil {
		return fmt.Errorf("%s: host: %w", run, err)
	}

	blend := filepath.Join(p.Config.ScenesDir, run+".blend")
	if err := host.Replay(ctx, h, d, blend); err != nil {
		return fmt.Errorf("%s: %w", run, err)
	}
	p.Logger.Debug("Сцена воспроизведена в хосте", zap.String("run", run), zap.String("scene", blend))

	if !p.Config.Blender.Render {
		return nil
	}
	r, ok := h.(host.Renderer)
	if !ok {
		return fmt.Errorf("%s: host cannot render", run)
	}

	start := time.Now()
	if err := r.Render(ctx, blend); err != nil {
		return fmt.Errorf("%s: %w", run, err)
	}
	p.Logger.Info("Рендер завершен",
		zap.String("run", run),
		zap.String("output", d.Render.OutputPath),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// writeStats prints the batch report and appends one line to batch.log in
// the scenes directory.
func (p *BatchProject) writeStats(r *Report) {
	cfg := p.Config
	s := r.Snapshot

	fmt.Printf(
		"--- [BATCH REPORT] ---\n"+
			"Build: %s\n"+
			"Seed: %d\n"+
			"Runs written: %d\n"+
			"Runs skipped: %d\n"+
			"Total Time: %.2fs\n"+
			"CPU: %d logical / %d physical\n"+
			"Memory: %d/%d MB (%.1f%%), heap %d MB\n"+
			"----------------------\n",
		cfg.BuildVersion, cfg.Seed, len(r.Written), len(r.Skipped), r.Elapsed.Seconds(),
		s.LogicalCPU, s.PhysicalCPU, s.UsedMemMB, s.TotalMemMB, s.UsedPercent, s.HeapAllocMB,
	)

	logEntry := fmt.Sprintf("[%s] Build: %s | Seed: %d | Written: %d | Skipped: %d | Total: %.2fs\n",
		time.Now().Format("2006-01-02 15:04:05"),
		cfg.BuildVersion,
		cfg.Seed,
		len(r.Written),
		len(r.Skipped),
		r.Elapsed.Seconds(),
	)

	f, err := os.OpenFile(filepath.Join(cfg.ScenesDir, "batch.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		p.Logger.Warn("Не удалось записать batch.log", zap.Error(err))
		return
	}
	defer f.Close()
	if _, err := f.WriteString(logEntry); err != nil {
		p.Logger.Warn("Не удалось записать batch.log", zap.Error(err))
	}
}
