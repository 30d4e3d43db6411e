// Package logging configures the application-wide logrus logger.
package logging

import (
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/DeRuina/timberjack"
	"github.com/sirupsen/logrus"

	"github.com/parallelpaths/game-companion/config"
)

// NewLogger creates and configures a new logrus.Logger based on the provided
// configuration. When a log file is set, output goes to both the file and
// stderr. The interactive UI owns stdout, so logs never write there.
func NewLogger(cfg *config.LogConfig) *logrus.Logger {
	logger := logrus.New()

	logLevel := logrus.InfoLevel
	if cfg.Level != "" {
		if lv, err := logrus.ParseLevel(strings.ToLower(cfg.Level)); err == nil {
			logLevel = lv
		}
	}
	logger.SetLevel(logLevel)

	var output io.Writer = os.Stderr
	if cfg.File != "" {
		fileLogger := &timberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     7,
		}
		output = io.MultiWriter(os.Stderr, fileLogger)
	}
	logger.SetOutput(output)

	textFormatter := &logrus.TextFormatter{
		FullTimestamp: true,
		CallerPrettyfier: func(f *runtime.Frame) (string, string) {
			return "", ""
		},
	}
	logger.SetFormatter(&SourceFormatter{Underlying: textFormatter})
	logger.SetReportCaller(true)

	return logger
}
