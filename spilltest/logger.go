// Copyright © 2026 The Spill authors

package spilltest

import (
	"bytes"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
)

// Logger is an io.Writer which forwards complete lines to a test log.  It
// receives runtime debug output and log entries during tests.
type Logger struct {
	t   testing.TB
	buf []byte
}

var _ io.Writer = (*Logger)(nil)

// NewLogger returns a Logger writing to t.
func NewLogger(t testing.TB) *Logger {
	return &Logger{
		t: t,
	}
}

func (log *Logger) Write(b []byte) (int, error) {
	log.buf = append(log.buf, b...)
	i := bytes.Index(log.buf, []byte("\n"))
	if i < 0 {
		return len(b), nil
	}
	log.t.Log(string(log.buf[:i])) // slice does not include \n
	log.buf = log.buf[i+1:]        // slice dos not include \n
	return len(b), nil
}

// Flush logs any partial line remaining in the buffer.
func (log *Logger) Flush() {
	if len(log.buf) == 0 {
		return
	}
	log.t.Log(string(log.buf))
	log.buf = nil
}

// NewFieldLogger returns a debug level logrus logger whose entries are written
// to the test log of t.
func NewFieldLogger(t testing.TB) (*logrus.Logger, *Logger) {
	w := NewLogger(t)
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(logrus.DebugLevel)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return logger, w
}
