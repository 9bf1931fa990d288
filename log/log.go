// Package log builds the zap logger used for diagnostics. Reports go to
// stdout, diagnostics go to stderr through this logger.
package log

import (
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultLevel keeps the tool quiet unless something was left out of a report.
const DefaultLevel = "warn"

// NewWithWriter creates a console logger writing to w, stderr in the CLI.
func NewWithWriter(w io.Writer, level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(strings.ToLower(level))
	if err != nil {
		return nil, err
	}
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.AddSync(w), lvl)
	return zap.New(core).Named("storagepos"), nil
}
