// Package logger wraps op/go-logging with a stderr backend and an optional
// file backend that always records at DEBUG.
package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/op/go-logging"
)

const (
	module     = "journal"
	timeFormat = "2006/01/02 15:04:05"
)

var (
	logger  *logging.Logger
	logFile *os.File
)

func init() {
	logger = logging.MustGetLogger(module)
	leveled := logging.AddModuleLevel(stderrBackend())
	leveled.SetLevel(logging.INFO, module)
	logger.SetBackend(leveled)
}

// ParseLevel maps a level name (DEBUG, INFO, NOTICE, WARNING, ERROR) to a
// logging.Level, falling back to INFO for unknown names.
func ParseLevel(name string) logging.Level {
	level, err := logging.LogLevel(name)
	if err != nil {
		return logging.INFO
	}
	return level
}

// InitLogger replaces the default backend. The console backend uses the
// given level; when filePath is set, a second backend appends there at DEBUG.
func InitLogger(level logging.Level, filePath string) {
	backends := make([]logging.Backend, 0, 2)

	console := logging.AddModuleLevel(stderrBackend())
	console.SetLevel(level, module)
	backends = append(backends, console)

	if filePath != "" {
		if fileBackend := initFileBackend(filePath); fileBackend != nil {
			leveled := logging.AddModuleLevel(fileBackend)
			leveled.SetLevel(logging.DEBUG, module)
			backends = append(backends, leveled)
		}
	}

	logger.SetBackend(logging.MultiLogger(backends...))
}

func stderrBackend() logging.Backend {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	return logging.NewBackendFormatter(backend, newFormatter())
}

func initFileBackend(path string) logging.Backend {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create log folder for %s: %v\n", path, err)
		return nil
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o660)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file %s: %v\n", path, err)
		return nil
	}

	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = file

	backend := logging.NewLogBackend(file, "", 0)
	return logging.NewBackendFormatter(backend, newFormatter())
}

func newFormatter() logging.Formatter {
	return logging.MustStringFormatter(`%{time:` + timeFormat + `} %{level:.4s} - %{message}`)
}

// CloseLogger closes the log file, if any. Call it during shutdown.
func CloseLogger() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

func Debug(args ...any) {
	logger.Debug(args...)
}

func Debugf(format string, args ...any) {
	logger.Debugf(format, args...)
}

func Info(args ...any) {
	logger.Info(args...)
}

func Infof(format string, args ...any) {
	logger.Infof(format, args...)
}

func Notice(args ...any) {
	logger.Notice(args...)
}

func Noticef(format string, args ...any) {
	logger.Noticef(format, args...)
}

func Warning(args ...any) {
	logger.Warning(args...)
}

func Warningf(format string, args ...any) {
	logger.Warningf(format, args...)
}

func Error(args ...any) {
	logger.Error(args...)
}

func Errorf(format string, args ...any) {
	logger.Errorf(format, args...)
}
