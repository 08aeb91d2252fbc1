package logging

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type requestIDKey struct{}

type Logger struct {
	*zap.Logger
}

func NewLogger(level string) (*Logger, error) {
	config := zap.NewProductionConfig()

	zapLevel, err := parseLevel(level)
	if err != nil {
		return nil, err
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)

	logger, err := config.Build()
	if err != nil {
		return nil, err
	}

	return &Logger{logger}, nil
}

// NewConsole is the human-readable logger used by the CLI. It writes to
// stderr so command output on stdout stays parseable.
func NewConsole(level string) (*Logger, error) {
	config := zap.NewDevelopmentConfig()
	config.DisableStacktrace = true
	config.OutputPaths = []string{"stderr"}

	zapLevel, err := parseLevel(level)
	if err != nil {
		return nil, err
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)

	logger, err := config.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{logger}, nil
}

// ForEnvironment picks the logger for a deployment environment: JSON for
// production, console output for development.
func ForEnvironment(env, level string) (*Logger, error) {
	switch env {
	case "production":
		return NewLogger(level)
	case "", "development":
		return NewConsole(level)
	default:
		return nil, fmt.Errorf("unknown environment %q", env)
	}
}

func NewNop() *Logger {
	return &Logger{zap.NewNop()}
}

func parseLevel(level string) (zapcore.Level, error) {
	var zapLevel zapcore.Level
	if level == "" {
		return zapcore.InfoLevel, nil
	}
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return zapLevel, err
	}
	return zapLevel, nil
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok
}

func (l *Logger) WithRequestID(ctx context.Context) *zap.Logger {
	if reqID, ok := RequestID(ctx); ok {
		return l.With(zap.String("request_id", reqID))
	}
	return l.Logger
}
