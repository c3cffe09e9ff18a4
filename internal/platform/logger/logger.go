// Package logger builds the JSON logrus entry shared by every component.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New returns an entry tagged with service. Unknown levels fall back to info.
func New(service, level string) *logrus.Entry {
	return NewWithOutput(service, level, os.Stdout)
}

func NewWithOutput(service, level string, out io.Writer) *logrus.Entry {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	log.SetOutput(out)

	lvl, err := logrus.ParseLevel(level)
	if err != nil || level == "" {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	return log.WithField("service", service)
}

// Discard is a silent entry for tests and optional collaborators.
func Discard() *logrus.Entry {
	return NewWithOutput("test", "panic", io.Discard)
}

// RedactEmail keeps the first letter and the domain.
func RedactEmail(e string) string {
	if e == "" {
		return "[empty]"
	}
	local, domain, ok := strings.Cut(e, "@")
	if !ok || local == "" {
		return e[:1] + "..."
	}
	return local[:1] + "...@" + domain
}
