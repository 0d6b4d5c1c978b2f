package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	instance *zap.SugaredLogger
	once     sync.Once
)

type Config struct {
	Development bool
	Level       string // debug, info, warn, error; empty means the mode default
}

func New(cfg Config) (*zap.SugaredLogger, error) {
	var err error
	once.Do(func() {
		var zc zap.Config
		if cfg.Development {
			zc = zap.NewDevelopmentConfig()
		} else {
			zc = zap.NewProductionConfig()
		}
		if cfg.Level != "" {
			var lvl zapcore.Level
			if lvl, err = zapcore.ParseLevel(cfg.Level); err != nil {
				return
			}
			zc.Level = zap.NewAtomicLevelAt(lvl)
		}
		var l *zap.Logger
		if l, err = zc.Build(); err != nil {
			return
		}
		instance = l.Sugar()
	})
	return instance, err
}
