package utils

import (
	"context"
	"runtime"
	"sync/atomic"

	"go.uber.org/zap"
)

var logger atomic.Pointer[zap.Logger]

func init() {
	SetLogger(zap.Must(zap.NewProduction()))
}

// SetLogger replaces the process logger, tests install zap.NewNop().
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger.Store(l)
	zap.ReplaceGlobals(l)
}

func GetLogger(ctx context.Context) *zap.Logger {
	l := logger.Load()
	if ctx == nil {
		return l
	}
	if reqID, ok := ctx.Value(requestIDKey{}).(string); ok && reqID != "" {
		return l.With(zap.String("request_id", reqID))
	}
	return l
}

type requestIDKey struct{}

func WithRequestID(ctx context.Context, reqID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, reqID)
}

func GetPanicInfo() string {
	buf := make([]byte, 16384)
	l := runtime.Stack(buf, false)
	return string(buf[:l])
}
