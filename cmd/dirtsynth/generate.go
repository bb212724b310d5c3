package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ivlev/dirtsynth/internal/config"
	"github.com/ivlev/dirtsynth/internal/engine"
	"github.com/ivlev/dirtsynth/internal/host"
	"github.com/ivlev/dirtsynth/internal/system"
)

func newGenerateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Сгенерировать пакет сцен",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.v)
			if err != nil {
				return err
			}
			cfg.BuildVersion = Version

			newHost, err := hostFactory(cfg, a.logger)
			if err != nil {
				return err
			}

			project := engine.NewBatchProject(cfg, a.logger, newHost)
			report, err := project.Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("ошибка пакета: %w", err)
			}

			fmt.Printf("[+++] Успех! Сцен: %d, пропущено: %d, каталог: %s\n",
				len(report.Written), len(report.Skipped), cfg.ScenesDir)
			return nil
		},
	}

	f := cmd.Flags()
	f.Uint64("seed", 0, "Зерно генератора случайных чисел")
	f.Int("runs", 2, "Количество запусков")
	f.Int("resolution", 512, "Сторона кадра в пикселях")
	f.Int("frames", 120, "Количество кадров")
	f.Int("fps", 30, "FPS")
	f.String("format", "JPEG", "Формат кадров: JPEG или PNG")
	f.Int("dirt-level", 9, "Уровень грязи 0-10")
	f.String("scenes-dir", "generated", "Каталог сцен")
	f.String("renders-dir", "renders", "Каталог рендеров")
	f.Bool("blender", false, "Воспроизвести сцену в Blender (.py и .blend рядом с дескриптором)")
	f.String("blender-bin", "", "Путь к Blender (по умолчанию ищется в PATH)")
	f.Bool("render", false, "Отрендерить анимацию (требует --blender)")
	f.String("device-type", "CUDA", "Тип GPU-устройства Cycles")
	f.Bool("slate", false, "Записать QR-слейт запуска")
	f.Bool("stats", false, "Показать отчет по пакету")

	a.bind(f, map[string]string{
		"seed":                "seed",
		"runs":                "runs",
		"resolution":          "resolution",
		"frames":              "frames",
		"fps":                 "fps",
		"format":              "format",
		"dirt_level":          "dirt-level",
		"scenes_dir":          "scenes-dir",
		"renders_dir":         "renders-dir",
		"blender.enabled":     "blender",
		"blender.binary":      "blender-bin",
		"blender.render":      "render",
		"blender.device_type": "device-type",
		"slate":               "slate",
		"stats":               "stats",
	})
	return cmd
}

// hostFactory returns nil when Blender replay is off. Without a Blender
// binary only replay scripts are written, which is not enough to render.
func hostFactory(cfg *config.Config, logger *zap.Logger) (engine.HostFactory, error) {
	if !cfg.Blender.Enabled {
		if cfg.Blender.Render {
			return nil, fmt.Errorf("--render требует --blender")
		}
		return nil, nil
	}

	bin, err := system.FindBinary("blender", cfg.Blender.Binary)
	if err != nil {
		if cfg.Blender.Render {
			return nil, err
		}
		logger.Warn("Blender не найден, будут записаны только сценарии", zap.Error(err))
		bin = ""
	}

	return func() (host.Host, error) {
		return host.NewBlender(bin, logger), nil
	}, nil
}
