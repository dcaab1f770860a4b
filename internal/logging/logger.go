// Package logging configures the logrus logger used across sportdash.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// SetupParams describes where and how to log.
type SetupParams struct {
	LogFileName   string
	LogToStdout   bool
	LogLevel      string
	LogFormatJSON bool
	MaxSizeMB     int
	MaxBackups    int
	MaxAgeDays    int

	// Stdout replaces os.Stdout, for tests.
	Stdout io.Writer
}

// Setup builds a logger from params. The returned closer releases the log
// file and is safe to call when no file is used.
func Setup(params SetupParams) (*logrus.Logger, io.Closer, error) {
	log := logrus.New()
	log.SetLevel(GetLevel(params.LogLevel))
	if params.LogFormatJSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	}

	stdout := params.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	if params.LogFileName == "" {
		if params.LogToStdout {
			log.SetOutput(stdout)
		} else {
			log.SetOutput(io.Discard)
		}
		return log, nopCloser{}, nil
	}

	if !strings.HasSuffix(params.LogFileName, ".log") {
		params.LogFileName += ".log"
	}
	if err := os.MkdirAll(filepath.Dir(params.LogFileName), 0700); err != nil {
		return nil, nil, err
	}

	maxSize := params.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 10
	}
	lumberJackLogger := &lumberjack.Logger{
		Filename:   params.LogFileName,
		MaxSize:    maxSize, // megabytes
		MaxBackups: params.MaxBackups,
		MaxAge:     params.MaxAgeDays,
		Compress:   true,
	}

	if params.LogToStdout {
		log.SetOutput(NewCombinedWriter(stdout, lumberJackLogger))
	} else {
		log.SetOutput(lumberJackLogger)
	}
	return log, lumberJackLogger, nil
}

// GetLevel maps a level name to a logrus level. Unknown names mean info.
func GetLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
