package mylog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/MarcGrol/tripcart/lib/mycontext"
)

func init() {
	if os.Getenv("GOOGLE_CLOUD_PROJECT") != "" {
		New = newGloudLogger
	}
}

// Cloud Run and App Engine parse one JSON object per stdout line
type structuredLogger struct {
	componentName string
	out           io.Writer
	mu            *sync.Mutex
}

func newGloudLogger(componentName string) Logger {
	return structuredLogger{
		componentName: componentName,
		out:           os.Stdout,
		mu:            &sync.Mutex{},
	}
}

func (l structuredLogger) Log(ctx context.Context, traceLabel string, severity Severity, format string, a ...any) {
	e := entry{
		Component: l.componentName,
		Trace:     mycontext.TraceFrom(ctx),
		Severity:  string(severity),
		Message:   fmt.Sprintf(format, a...),
	}
	if traceLabel != "" {
		e.Labels = map[string]string{"cart": traceLabel}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.out, e.String())
}

type entry struct {
	Component string            `json:"component,omitempty"`
	Labels    map[string]string `json:"logging.googleapis.com/labels,omitempty"`
	Trace     string            `json:"logging.googleapis.com/trace,omitempty"`
	Severity  string            `json:"severity,omitempty"`
	Message   string            `json:"message"`
}

func (e entry) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return fmt.Sprintf(`{"severity":"ERROR","message":"error marshalling log record: %s"}`, err)
	}
	return string(out)
}
