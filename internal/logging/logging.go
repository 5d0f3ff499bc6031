// Package logging builds the debug logger enabled by KUBEKEEPER_DEBUG.
package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a console logger writing to stderr at debug level, or a no-op
// logger when debug is off. kubectl owns stdout, so nothing is logged there.
func New(debug bool) *zap.Logger {
	if !debug {
		return zap.NewNop()
	}
	return NewWithWriter(os.Stderr)
}

// NewWithWriter returns a debug-level console logger writing to w.
func NewWithWriter(w io.Writer) *zap.Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	encCfg.CallerKey = ""
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(w),
		zapcore.DebugLevel,
	)
	return zap.New(core).Named("kubekeeper")
}
