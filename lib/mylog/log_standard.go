package mylog

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
)

func init() {
	if os.Getenv("GOOGLE_CLOUD_PROJECT") == "" {
		New = newStandardLogger
	}
}

type standardLogger struct {
	sugar *zap.SugaredLogger
}

func newStandardLogger(componentName string) Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableCaller = true
	cfg.DisableStacktrace = true

	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating console logger for %s: %s\n", componentName, err)
		logger = zap.NewNop()
	}

	return standardLogger{
		sugar: logger.Sugar().Named(componentName),
	}
}

func (l standardLogger) Log(ctx context.Context, traceLabel string, severity Severity, format string, a ...any) {
	msg := fmt.Sprintf(format, a...)

	switch severity {
	case SeverityDebug:
		l.sugar.Debugw(msg, "cart", traceLabel)
	case SeverityWarn:
		l.sugar.Warnw(msg, "cart", traceLabel)
	case SeverityError:
		l.sugar.Errorw(msg, "cart", traceLabel)
	default:
		l.sugar.Infow(msg, "cart", traceLabel)
	}
}
