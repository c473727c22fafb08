package config

import (
	"go.uber.org/zap"
)

// NewLogger builds a json (production) or console (development) zap logger.
// An unknown level falls back to info. outputPaths replaces the default
// stderr sink, which the terminal browser needs to keep the screen clean.
func NewLogger(level, format string, initial map[string]any, outputPaths ...string) (*zap.Logger, error) {
	var zc zap.Config
	if format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}

	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		lvl = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	zc.Level = lvl
	zc.InitialFields = initial
	if len(outputPaths) > 0 {
		zc.OutputPaths = outputPaths
		zc.ErrorOutputPaths = outputPaths
	}

	return zc.Build()
}
