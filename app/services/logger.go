package services

import (
	"io"
	"os"
	"strings"

	"github.com/amirphl/leadboard/config"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ConfigureLogging sets up the global logrus logger and returns the writer it logs to,
// so access logs can share the destination.
func ConfigureLogging(cfg config.LoggingConfig) io.Writer {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if strings.EqualFold(cfg.Format, "text") {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	out := logWriter(cfg)
	logrus.SetOutput(out)
	return out
}

func logWriter(cfg config.LoggingConfig) io.Writer {
	if cfg.Output == "stdout" || cfg.FilePath == "" {
		return os.Stdout
	}

	file := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
	if cfg.Output == "file" {
		return file
	}
	return io.MultiWriter(os.Stdout, file)
}
