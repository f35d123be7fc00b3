// Package logger holds the process-wide zap logger.
package logger

import (
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const projectName = "ideaboard"

var L = New(Options{})

// Options selects level and encoding. The zero value logs JSON at info to
// stdout.
type Options struct {
	Level  string // debug, info, warn or error
	Format string // json or console
	Output io.Writer
}

// Init replaces L.
func Init(opts Options) {
	L = New(opts)
}

func New(opts Options) *zap.Logger {
	level := zap.InfoLevel
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			level = zap.InfoLevel
		}
	}
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	core := zapcore.NewCore(newEncoder(opts.Format), zapcore.AddSync(out), level)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
}

func newEncoder(format string) zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeCaller = trimCaller

	if strings.EqualFold(format, "console") {
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(cfg)
	}
	return zapcore.NewJSONEncoder(cfg)
}

// trimCaller prints paths from the module root, e.g. ideaboard/internal/dao/idea.go:42.
func trimCaller(caller zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
	if i := strings.LastIndex(caller.File, projectName+"/"); i != -1 {
		enc.AppendString(caller.File[i:] + ":" + strconv.Itoa(caller.Line))
		return
	}
	enc.AppendString(caller.TrimmedPath())
}
