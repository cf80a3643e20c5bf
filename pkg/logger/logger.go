// Package logger provides opinionated logging for glimpse commands.
package logger

import (
	"io"
	"os"

	"github.com/muesli/termenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures New.
type Options struct {
	Debug bool

	// Output defaults to stdout. Commands that speak a protocol on stdout
	// log to stderr instead.
	Output io.Writer

	// Color enables ANSI level colors.
	Color bool
}

// NewLogger returns a console logger on stdout, colored unless NO_COLOR is set.
func NewLogger(debug bool) *zap.Logger {
	return New(Options{Debug: debug, Output: os.Stdout, Color: !termenv.EnvNoColor()})
}

// New builds a console logger from opts.
func New(opts Options) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if opts.Color {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	level := zap.InfoLevel
	if opts.Debug {
		level = zap.DebugLevel
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(out),
		level,
	)

	return zap.New(core, zap.AddCaller())
}
