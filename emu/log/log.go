// Package log is a thin layer over logrus providing per-module logging.
//
// Messages at warning level or above are always emitted. Lower levels are only
// emitted for the modules enabled with EnableDebugModules.
package log

import (
	"io"

	"gopkg.in/Sirupsen/logrus.v0"
)

type Level = logrus.Level

const (
	PanicLevel = logrus.PanicLevel
	FatalLevel = logrus.FatalLevel
	ErrorLevel = logrus.ErrorLevel
	WarnLevel  = logrus.WarnLevel
	InfoLevel  = logrus.InfoLevel
	DebugLevel = logrus.DebugLevel
)

func init() {
	logrus.SetLevel(logrus.DebugLevel)
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
}

var disabled bool

// Disable turns off all logging, whatever the level.
func Disable() {
	disabled = true
	logrus.SetOutput(io.Discard)
}

// SetOutput redirects log output to w.
func SetOutput(w io.Writer) {
	logrus.SetOutput(w)
}

// A ContextAdder adds fields to every log entry. Emulated hardware uses it to
// stamp entries with its current state (frame number, cycle counter...).
type ContextAdder interface {
	AddLogContext(z *EntryZ)
}

var contexts []ContextAdder

// AddContext registers a context adder.
func AddContext(ctx ContextAdder) {
	contexts = append(contexts, ctx)
}

// ResetContexts removes all registered context adders.
func ResetContexts() {
	contexts = nil
}
