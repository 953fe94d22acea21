package service

// Level classifies a progress log line.
type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
	LevelDebug Level = "debug"
)

// Sink receives progress and log output from a running operation. Long
// operations call Notify as they advance and Log once per record decision.
type Sink interface {
	Notify(percent int)
	Log(level Level, msg string)
}

// NopSink discards everything. Useful in tests and headless runs.
type NopSink struct{}

func (NopSink) Notify(int)        {}
func (NopSink) Log(Level, string) {}

// MultiSink fans output to several sinks.
type MultiSink []Sink

func (m MultiSink) Notify(percent int) {
	for _, s := range m {
		s.Notify(percent)
	}
}

func (m MultiSink) Log(level Level, msg string) {
	for _, s := range m {
		s.Log(level, msg)
	}
}
