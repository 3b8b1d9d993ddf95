package whatsapp

import (
	"context"
	"fmt"
	"log/slog"

	waLog "go.mau.fi/whatsmeow/util/log"
)

// slogLogger bridges whatsmeow's printf-style logger onto slog.
type slogLogger struct {
	log    *slog.Logger
	module string
}

// NewLogger returns a waLog.Logger writing through log, tagged with module.
func NewLogger(log *slog.Logger, module string) waLog.Logger {
	return &slogLogger{log: log.With("module", module), module: module}
}

func (l *slogLogger) Warnf(msg string, args ...interface{}) {
	l.emit(slog.LevelWarn, msg, args)
}

func (l *slogLogger) Errorf(msg string, args ...interface{}) {
	l.emit(slog.LevelError, msg, args)
}

func (l *slogLogger) Infof(msg string, args ...interface{}) {
	l.emit(slog.LevelInfo, msg, args)
}

func (l *slogLogger) Debugf(msg string, args ...interface{}) {
	l.emit(slog.LevelDebug, msg, args)
}

func (l *slogLogger) Sub(module string) waLog.Logger {
	return NewLogger(l.log, l.module+"/"+module)
}

func (l *slogLogger) emit(level slog.Level, msg string, args []interface{}) {
	ctx := context.Background()
	if !l.log.Enabled(ctx, level) {
		return
	}
	l.log.Log(ctx, level, fmt.Sprintf(msg, args...))
}
