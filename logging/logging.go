package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/milk9111/mobengine/config"
)

type loggerImp struct {
	logger *zap.Logger
	sugar  *zap.SugaredLogger
}

var l = newImp(zap.NewNop())

func newImp(z *zap.Logger) *loggerImp {
	return &loggerImp{logger: z, sugar: z.Sugar()}
}

// Init builds the engine logger from config and installs it.
func Init(name string, cfg config.Logger) error {
	z, err := newLogger(name, cfg)
	if err != nil {
		return err
	}
	Set(z)
	l.logger.Info("initialize logger", zap.String("level", cfg.Level))
	return nil
}

// Set swaps the installed logger. A nil logger installs a no-op one.
func Set(z *zap.Logger) {
	if z == nil {
		z = zap.NewNop()
	}
	l = newImp(z)
}

// L returns the installed logger.
func L() *zap.Logger {
	return l.logger
}

// Named returns a child logger of the installed one.
func Named(name string) *zap.Logger {
	return l.logger.Named(name)
}

func Sync() error {
	return l.logger.Sync()
}

func Debug(msg string, fields ...zapcore.Field) { l.logger.Debug(msg, fields...) }
func Info(msg string, fields ...zapcore.Field)  { l.logger.Info(msg, fields...) }
func Warn(msg string, fields ...zapcore.Field)  { l.logger.Warn(msg, fields...) }
func Error(msg string, fields ...zapcore.Field) { l.logger.Error(msg, fields...) }
func Fatal(msg string, fields ...zapcore.Field) { l.logger.Fatal(msg, fields...) }

func Debugf(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }
func Infof(format string, args ...interface{})  { l.sugar.Infof(format, args...) }
func Warnf(format string, args ...interface{})  { l.sugar.Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }

func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	}
	return zapcore.InfoLevel, fmt.Errorf("logging: level %q must be one of debug, info, warn, error", level)
}

func newLogger(name string, cfg config.Logger) (*zap.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var cores []zapcore.Core
	if cfg.Stdout {
		cores = append(cores, zapcore.NewCore(newConsoleEncoder(), zapcore.Lock(os.Stdout), level))
	}

	file := cfg.File
	if file == "" && cfg.Dir != "" {
		file = name + ".log"
	}
	if file != "" {
		path := filepath.Join(cfg.Dir, file)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("logging: create dir for %s: %w", path, err)
		}

		var ws zapcore.WriteSyncer
		if cfg.Rotation {
			ws = zapcore.AddSync(&lumberjack.Logger{
				Filename:   path,
				MaxSize:    cfg.MaxSize,
				MaxAge:     cfg.MaxAge,
				MaxBackups: cfg.MaxBackups,
				LocalTime:  true,
				Compress:   cfg.Compress,
			})
		} else {
			f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o666)
			if err != nil {
				return nil, fmt.Errorf("logging: open %s: %w", path, err)
			}
			ws = zapcore.AddSync(f)
		}
		cores = append(cores, zapcore.NewCore(newJSONEncoder(), ws, level))
	}

	if len(cores) == 0 {
		return zap.NewNop(), nil
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddStacktrace(zap.ErrorLevel)).Named(name), nil
}

func newJSONEncoder() zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapcore.NewJSONEncoder(cfg)
}

func newConsoleEncoder() zapcore.Encoder {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	return zapcore.NewConsoleEncoder(cfg)
}
