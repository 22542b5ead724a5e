package log

import (
	"bytes"
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// mockWriteSyncer is a mock implementation of the zapcore.WriteSyncer interface for testing purposes.
type mockWriteSyncer struct {
	buffer bytes.Buffer
}

func (m *mockWriteSyncer) Write(p []byte) (n int, err error) {
	return m.buffer.Write(p)
}

func (m *mockWriteSyncer) Sync() error {
	return nil
}

func newBufferedLogger(level zapcore.Level) (*zapLogger, *mockWriteSyncer) {
	mock := &mockWriteSyncer{}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), mock, level)
	return &zapLogger{logger: zap.New(core)}, mock
}

func TestNewLogger(t *testing.T) {
	ctx := context.Background()
	logger := NewLogger(ctx)
	if logger == nil {
		t.Fatal("Expected logger to be non-nil")
	}
}

func TestNewLogger_FromContext(t *testing.T) {
	logger, _ := newBufferedLogger(zap.InfoLevel)
	ctx := WithLogger(context.Background(), logger)

	if got := NewLogger(ctx); got != logger {
		t.Fatalf("Expected the context logger to be returned, got %v", got)
	}
}

func TestWithLogger(t *testing.T) {
	ctx := context.Background()
	logger := NewLogger(ctx)
	ctxWithLogger := WithLogger(ctx, logger)
	if ctxWithLogger.Value(loggerKey) == nil {
		t.Fatal("Expected logger to be set in context")
	}
}

func TestNewLoggerWithLevel(t *testing.T) {
	if _, err := NewLoggerWithLevel("debug"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := NewLoggerWithLevel("loud"); err == nil {
		t.Fatal("Expected an error for an unknown level")
	}
}

func TestLevels(t *testing.T) {
	tests := []struct {
		name  string
		level zapcore.Level
		log   func(l *zapLogger, msg string)
	}{
		{"debug", zap.DebugLevel, func(l *zapLogger, msg string) { l.Debug(msg) }},
		{"info", zap.InfoLevel, func(l *zapLogger, msg string) { l.Info(msg) }},
		{"warn", zap.WarnLevel, func(l *zapLogger, msg string) { l.Warn(msg) }},
		{"error", zap.ErrorLevel, func(l *zapLogger, msg string) { l.Error(msg) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, mock := newBufferedLogger(tt.level)
			tt.log(logger, tt.name+" message")
			if !bytes.Contains(mock.buffer.Bytes(), []byte(tt.name+" message")) {
				t.Fatalf("Expected %s message to be logged, got %s", tt.name, mock.buffer.String())
			}
		})
	}
}

func TestWith(t *testing.T) {
	logger, mock := newBufferedLogger(zap.InfoLevel)

	child := logger.With(zap.String("project", "acme"), "not-a-field")
	child.Info("imported")

	out := mock.buffer.String()
	if !bytes.Contains([]byte(out), []byte(`"project":"acme"`)) {
		t.Fatalf("Expected child field in output, got %s", out)
	}
	if bytes.Contains([]byte(out), []byte("not-a-field")) {
		t.Fatalf("Expected non-zap fields to be dropped, got %s", out)
	}
}
