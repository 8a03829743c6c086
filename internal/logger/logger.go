// internal/logger/logger.go
//
// Structured JSON logger (Zap + Lumberjack).
//
// Context
// -------
// The dashboard writes lifecycle and error events to one JSON log file under
// the resolved log directory, `<log_dir>/<log.filename>`.  When `log.console`
// or `app.debug` is set we tee the same events to stderr in console format.
// Rotation, compression, and retention come from the `log.*` settings and are
// handled by Lumberjack; no external log-rotate job is required.
//
// Usage
// -----
//
//	s, err := config.Get()
//	if err != nil { … }
//	log, err := logger.New(s)
//	if err != nil { … }
//	defer log.Sync()
//	log.Infow("dashboard online", "addr", s.Server.ListenAddr)
//
// Notes
// -----
// • Level names follow the settings vocabulary (DEBUG … CRITICAL).
// • CRITICAL maps to zap's DPanic level.  The logger is never built in
//   development mode, so DPanic logs and returns, even with app.debug.
// • Errors from the logger itself go to the same file via `ErrorOutput`.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mim3/salesdash/internal/config"
)

// ParseLevel maps a settings level name to a zap level.
func ParseLevel(name string) (zapcore.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return zap.DebugLevel, nil
	case "INFO":
		return zap.InfoLevel, nil
	case "WARNING":
		return zap.WarnLevel, nil
	case "ERROR":
		return zap.ErrorLevel, nil
	case "CRITICAL":
		return zap.DPanicLevel, nil
	}
	return zap.InfoLevel, fmt.Errorf("logger: unknown level %q", name)
}

// FilePath is where New writes the JSON log for s.
func FilePath(s *config.Settings) string {
	return filepath.Join(s.Paths.LogDir, s.Log.Filename)
}

// New returns a *zap.SugaredLogger configured from s and installs it as the
// process-wide default via zap.ReplaceGlobals.
func New(s *config.Settings) (*zap.SugaredLogger, error) {
	return newLogger(s, os.Stderr)
}

func newLogger(s *config.Settings, console io.Writer) (*zap.SugaredLogger, error) {
	level, err := ParseLevel(s.Log.Level)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.Paths.LogDir, 0o755); err != nil {
		return nil, err
	}

	fileSink := &lumberjack.Logger{
		Filename:   FilePath(s),
		MaxSize:    s.Log.MaxSizeMB,
		MaxBackups: s.Log.MaxBackups,
		MaxAge:     s.Log.MaxAgeDays,
		Compress:   s.Log.Compress,
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:      "ts",
		LevelKey:     "level",
		MessageKey:   "msg",
		CallerKey:    "caller",
		EncodeTime:   zapcore.ISO8601TimeEncoder,
		EncodeLevel:  zapcore.LowercaseLevelEncoder,
		EncodeCaller: zapcore.ShortCallerEncoder,
	}
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(fileSink), level),
	}

	tee := s.Log.Console || s.App.Debug
	if tee {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encCfg),
			zapcore.AddSync(console),
			level,
		))
	}

	opts := []zap.Option{
		zap.ErrorOutput(zapcore.AddSync(fileSink)),
		zap.AddCaller(),
		zap.Fields(zap.String("app", s.App.Name), zap.String("env", s.App.Env)),
	}
	z := zap.New(zapcore.NewTee(cores...), opts...).Sugar()

	zap.ReplaceGlobals(z.Desugar())

	z.Infow("logger online", "file", fileSink.Filename, "level", s.Log.Level, "tee", tee)
	return z, nil
}
