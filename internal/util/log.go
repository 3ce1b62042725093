package util

import (
	"io"
	"os"

	nested "github.com/antonfisher/nested-logrus-formatter"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

func InitLogger(level log.Level) {
	log.SetLevel(level)
	log.SetFormatter(&nested.Formatter{})
}

// InitFileLogger routes log output to a rotated file in addition to
// stderr. Used by the plugin build, where stderr belongs to slurmctld.
func InitFileLogger(level log.Level, path string) {
	InitLogger(level)
	if path == "" {
		return
	}
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    16, // MiB
		MaxBackups: 4,
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, rotator))
}

func ParseLogLevel(s string) log.Level {
	if s == "" {
		return log.InfoLevel
	}
	level, err := log.ParseLevel(s)
	if err != nil {
		log.Warnf("Unknown log level %q, defaulting to info", s)
		return log.InfoLevel
	}
	return level
}
