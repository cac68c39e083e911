package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger writes human readable lines to stderr and, when a log path is
// configured, JSON lines to that file
type Logger struct {
	sugar *zap.SugaredLogger
	file  *os.File
}

func (l *Logger) Init(logPath string) error {
	consoleEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stderr), zapcore.InfoLevel),
	}

	if logPath != "" {
		logDir := filepath.Dir(logPath)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}

		file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		l.file = file

		fileEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.AddSync(file), zapcore.DebugLevel))
	}

	l.sugar = zap.New(zapcore.NewTee(cores...), zap.AddCaller()).Sugar()
	return nil
}

// New wraps an existing zap logger
func New(z *zap.Logger) LoggerInterface {
	return &Logger{sugar: z.Sugar()}
}

// Nop returns a logger that discards everything
func Nop() LoggerInterface {
	return New(zap.NewNop())
}

func (l *Logger) Close() error {
	_ = l.sugar.Sync()
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

func (l *Logger) With(keysAndValues ...any) LoggerInterface {
	return &Logger{sugar: l.sugar.With(keysAndValues...), file: l.file}
}

func (l *Logger) Info(v ...any) {
	l.sugar.Info(v...)
}

func (l *Logger) Infof(format string, v ...any) {
	l.sugar.Infof(format, v...)
}

func (l *Logger) Warn(v ...any) {
	l.sugar.Warn(v...)
}

func (l *Logger) Warnf(format string, v ...any) {
	l.sugar.Warnf(format, v...)
}

func (l *Logger) Error(v ...any) {
	l.sugar.Error(v...)
}

func (l *Logger) Errorf(format string, v ...any) {
	l.sugar.Errorf(format, v...)
}

func (l *Logger) Debug(v ...any) {
	l.sugar.Debug(v...)
}

func (l *Logger) Debugf(format string, v ...any) {
	l.sugar.Debugf(format, v...)
}
