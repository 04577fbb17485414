package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger. It discards everything until InitDebugLog
// enables it, so call sites never need a nil check.
var Log = newDiscardLogger()

var Debug = false

const redacted = "[REDACTED]"

// secretPattern matches bearer tokens and sk- style API keys.
var secretPattern = regexp.MustCompile(`(?i)(bearer\s+)[^\s"',]+|\bsk-[A-Za-z0-9_\-]{4,}`)

func newDiscardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.WarnLevel)
	l.AddHook(RedactHook{})
	return l
}

// InitDebugLog points Log at <dataDir>/debug.log when VAULTCHAT_DEBUG is set.
// It returns the opened file so the caller can close it on exit, or nil.
func InitDebugLog(dataDir string) *os.File {
	if !CheckDebug() {
		return nil
	}

	logPath := filepath.Join(dataDir, "debug.log")

	// 0600 - may contain conversation text
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return nil
	}

	Debug = true
	Log.SetOutput(f)
	Log.SetLevel(logrus.DebugLevel)
	Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	Log.WithField("path", logPath).Debug("=== Debug logging started ===")

	return f
}

// RedactHook scrubs credential-shaped substrings from messages and string
// fields before an entry is written.
type RedactHook struct{}

func (RedactHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (RedactHook) Fire(entry *logrus.Entry) error {
	entry.Message = Redact(entry.Message)
	for k, v := range entry.Data {
		switch val := v.(type) {
		case string:
			entry.Data[k] = Redact(val)
		case error:
			entry.Data[k] = Redact(val.Error())
		}
	}
	return nil
}

// Redact replaces bearer tokens and sk- keys in s.
func Redact(s string) string {
	return secretPattern.ReplaceAllStringFunc(s, func(m string) string {
		if sub := secretPattern.FindStringSubmatch(m); len(sub) > 1 && sub[1] != "" {
			return sub[1] + redacted
		}
		return redacted
	})
}
