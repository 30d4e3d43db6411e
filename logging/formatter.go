package logging

import (
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// SourceFormatter is a custom formatter to control the caller output.
// It wraps a standard formatter and replaces the verbose caller field
// with a short "file.go:123" source location.
type SourceFormatter struct {
	// Underlying is the formatter (e.g., &logrus.TextFormatter{}) that we delegate to.
	Underlying logrus.Formatter
}

// Format renders a single log entry.
func (f *SourceFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	if entry.HasCaller() {
		fileName := filepath.Base(entry.Caller.File)
		entry.Data["source"] = fmt.Sprintf("%s:%d", fileName, entry.Caller.Line)
	}

	return f.Underlying.Format(entry)
}
