package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ivlev/dirtsynth/internal/config"
	"github.com/ivlev/dirtsynth/internal/observability"
	"github.com/ivlev/dirtsynth/internal/system"
)

// app is the state shared by the commands of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	config.SetDefaults(a.v)
	a.v.SetEnvPrefix(config.EnvPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "dirtsynth",
		Short:         "Генератор синтетических сцен «грязный экран + вращающийся сфероид»",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ReadConfigFile(a.v, a.cfgFile); err != nil {
				return err
			}
			a.logger = observability.Initialize(config.LogConfig{
				Level:  a.v.GetString("log.level"),
				Format: a.v.GetString("log.format"),
			})
			system.InitResourceLimits(a.logger)
			a.logger.Debug("dirtsynth", zap.String("version", Version))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.cfgFile, "config", "c", "", "YAML-файл конфигурации")
	pf.String("log-level", "info", "Уровень логирования: debug, info, warn, error")
	pf.String("log-format", "console", "Формат логов: console или json")
	a.bind(pf, map[string]string{
		"log.level":  "log-level",
		"log.format": "log-format",
	})

	root.AddCommand(newGenerateCmd(a), newFramesCmd(a))
	return root
}

// bind связывает ключи viper с флагами; флаг перекрывает env и файл только
// если задан явно.
func (a *app) bind(fs *pflag.FlagSet, keys map[string]string) {
	for key, flag := range keys {
		if err := a.v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("bind %s: %v", flag, err))
		}
	}
}
