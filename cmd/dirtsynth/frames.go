package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ivlev/dirtsynth/internal/config"
	"github.com/ivlev/dirtsynth/internal/frames"
	"github.com/ivlev/dirtsynth/internal/source"
	"github.com/ivlev/dirtsynth/internal/system"
)

func newFramesCmd(a *app) *cobra.Command {
	var (
		p      config.FrameParams
		size   string
		latest bool
	)

	cmd := &cobra.Command{
		Use:   "frames",
		Short: "Разложить видео, документ или папку изображений на кадры 0.JPG, 1.JPG, ...",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			p.Width, p.Height, err = frames.ParseSize(size)
			if err != nil {
				return err
			}

			if latest {
				exts := append(append([]string{}, source.VideoExts...), source.DocumentExts...)
				p.InputPath, err = system.FindLatest(p.InputPath, exts)
				if err != nil {
					return err
				}
				a.logger.Info("Выбран файл", zap.String("input", p.InputPath))
			}
			if _, err := os.Stat(p.InputPath); err != nil {
				return fmt.Errorf("источник: %w", err)
			}

			src, err := source.Open(cmd.Context(), p.InputPath, p.DPI, a.logger)
			if err != nil {
				return fmt.Errorf("ошибка инициализации источника: %w", err)
			}
			defer src.Close()

			res, err := frames.NewExtractor(p, a.logger).Run(cmd.Context(), src)
			if err != nil {
				return err
			}

			fmt.Printf("[+++] Успех! Кадров: %d, каталог: %s\n", res.Frames, res.Dir)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&p.InputPath, "input", "i", "", "Видео, документ (PDF, CBZ, EPUB, XPS) или папка изображений")
	f.StringVar(&p.Name, "name", "new", "Имя каталога кадров")
	f.StringVarP(&p.OutDir, "out", "o", "frames", "Корневой каталог вывода")
	f.IntVar(&p.DPI, "dpi", 150, "DPI растеризации документов")
	f.StringVar(&size, "size", "", "Размер кадров WxH (по умолчанию исходный)")
	f.IntVar(&p.Quality, "quality", frames.DefaultQuality, "Качество JPEG 1-100")
	f.IntVar(&p.Workers, "workers", 0, "Потоки кодирования (0 - по числу CPU)")
	f.BoolVar(&latest, "latest", false, "Взять самый свежий видеофайл или документ из папки --input")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
