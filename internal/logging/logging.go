// Package logging builds the zap logger shared by commands and backends.
package logging

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a debug-level console logger writing to w when debug is set,
// and a no-op logger otherwise so regular output stays clean.
func New(debug bool, w io.Writer) *zap.Logger {
	if !debug || w == nil {
		return zap.NewNop()
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(w),
		zap.NewAtomicLevelAt(zapcore.DebugLevel),
	)
	return zap.New(core)
}
