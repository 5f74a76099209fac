// Package logger provides the gateway's single process-wide structured
// logger, built on github.com/Laisky/zap.
package logger

import (
	"fmt"
	"sync"

	"github.com/Laisky/zap"
	"github.com/Laisky/zap/zapcore"

	"github.com/Chyrain/LLMGateway/common/config"
)

// Logger is the process-wide structured logger. Every package logs through
// this instance rather than holding its own.
var Logger *zap.Logger

var (
	setupOnce sync.Once
	initOnce  sync.Once
)

// init initializes the logger automatically when the package is imported,
// so packages may log as early as their own init() functions.
func init() {
	initLogger()
}

func initLogger() {
	initOnce.Do(func() {
		level := zapcore.InfoLevel
		if config.DebugEnabled {
			level = zapcore.DebugLevel
		}

		cfg := zap.Config{
			Level:            zap.NewAtomicLevelAt(level),
			Encoding:         "console",
			EncoderConfig:    zap.NewProductionEncoderConfig(),
			OutputPaths:      []string{"stdout"},
			ErrorOutputPaths: []string{"stderr"},
		}
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

		built, err := cfg.Build()
		if err != nil {
			panic(fmt.Sprintf("failed to build logger: %+v", err))
		}
		Logger = built
	})
}

// SetupLogger logs one line when config.DebugEnabled is set; only its first
// call does anything. It does not change the logger's level, which is fixed
// from config.DebugEnabled when the logger is built.
func SetupLogger() {
	setupOnce.Do(func() {
		if config.DebugEnabled {
			Logger.Info("debug logging enabled")
		}
	})
}

