package mylog

import (
	"context"
	"fmt"
	"sync"
)

type Entry struct {
	TraceLabel string
	Severity   Severity
	Message    string
}

// Recorder keeps log entries in memory so tests can assert on them
type Recorder struct {
	sync.Mutex
	entries []Entry
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Log(ctx context.Context, traceLabel string, severity Severity, format string, a ...any) {
	r.Lock()
	defer r.Unlock()

	r.entries = append(r.entries, Entry{
		TraceLabel: traceLabel,
		Severity:   severity,
		Message:    fmt.Sprintf(format, a...),
	})
}

func (r *Recorder) Entries() []Entry {
	r.Lock()
	defer r.Unlock()

	return append([]Entry{}, r.entries...)
}

func (r *Recorder) WithSeverity(severity Severity) []Entry {
	found := []Entry{}
	for _, e := range r.Entries() {
		if e.Severity == severity {
			found = append(found, e)
		}
	}
	return found
}
