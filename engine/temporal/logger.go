package temporal

import (
	"context"

	"goa.design/clue/log"

	sdklog "go.temporal.io/sdk/log"
)

// clueLogger adapts goa.design/clue/log to the Temporal SDK logger interface.
// The context captured at construction carries the log format and debug
// settings for the whole process.
type clueLogger struct {
	ctx context.Context
}

func newClueLogger(ctx context.Context) sdklog.Logger {
	return &clueLogger{ctx: ctx}
}

func (l *clueLogger) Debug(msg string, keyvals ...any) {
	log.Debug(l.ctx, fielders(msg, keyvals)...)
}

func (l *clueLogger) Info(msg string, keyvals ...any) {
	log.Info(l.ctx, fielders(msg, keyvals)...)
}

func (l *clueLogger) Warn(msg string, keyvals ...any) {
	log.Warn(l.ctx, fielders(msg, keyvals)...)
}

func (l *clueLogger) Error(msg string, keyvals ...any) {
	log.Error(l.ctx, nil, fielders(msg, keyvals)...)
}

func fielders(msg string, keyvals []any) []log.Fielder {
	fs := make([]log.Fielder, 0, len(keyvals)/2+1)
	fs = append(fs, log.KV{K: "msg", V: msg})
	for i := 0; i+1 < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			continue
		}
		fs = append(fs, log.KV{K: key, V: keyvals[i+1]})
	}
	return fs
}
