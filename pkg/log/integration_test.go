package log

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/YuminosukeSato/featsel/pkg/errors"
	"github.com/goccy/go-json"
)

func TestLoggerInterface(t *testing.T) {
	testLogger, buffer := NewTestLogger(LevelDebug)

	testLogger.Debug("debug message", "key1", "value1", "number", 42)
	testLogger.Info("info message", OperationKey, OperationFit)
	testLogger.Warn("warning message", "warning_code", "TEST_WARNING")
	testLogger.Error("error message", ErrAttrKey, fmt.Errorf("test error"))

	if buffer.Len() == 0 {
		t.Fatal("Expected log output, got empty string")
	}
	for _, msg := range []string{"debug message", "info message", "warning message", "error message"} {
		if !testLogger.ContainsMessage(msg) {
			t.Errorf("%q not found in output", msg)
		}
	}
	if !testLogger.ContainsField("key1", "value1") {
		t.Error("Expected field key1=value1 not found")
	}
	if !testLogger.ContainsField("number", 42.0) {
		t.Error("Expected field number=42 not found")
	}
	if !testLogger.ContainsField(ErrAttrKey, "test error") {
		t.Error("errors should be logged by message")
	}
}

func TestLoggerWith(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelDebug)

	contextLogger := testLogger.With(
		ModelNameKey, "RFECV",
		ComponentKey, "feature_selection",
	)
	contextLogger.Info("fold scored", FoldKey, 2, AccuracyKey, 0.93)

	if !testLogger.ContainsField(ModelNameKey, "RFECV") {
		t.Error("Model name context not found")
	}
	if !testLogger.ContainsField(FoldKey, 2.0) {
		t.Error("Fold field not found")
	}
	if !testLogger.ContainsField(AccuracyKey, 0.93) {
		t.Error("Accuracy field not found")
	}
}

func TestLoggerUnencodableField(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelDebug)

	testLogger.Info("odd field", "ch", make(chan int), FoldKey, 1)

	entries, err := testLogger.GetLogEntries()
	if err != nil {
		t.Fatalf("captured output should stay valid JSON: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 record, got %d", len(entries))
	}
	if entries[0]["message"] != "odd field" {
		t.Errorf("message lost: %v", entries[0])
	}
	if _, ok := entries[0]["marshal_error"]; !ok {
		t.Errorf("marshal_error missing: %v", entries[0])
	}
	if entries[0][FoldKey] != "1" {
		t.Errorf("fields should be kept as strings, got %v", entries[0][FoldKey])
	}
}

func TestLoggerEnabled(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelInfo)
	ctx := context.Background()

	if !testLogger.Enabled(ctx, LevelInfo) || !testLogger.Enabled(ctx, LevelError) {
		t.Error("Logger should be enabled for Info and Error")
	}
	if testLogger.Enabled(ctx, LevelDebug) {
		t.Error("Logger should not be enabled for Debug level")
	}

	testLogger.Debug("this should not appear")
	testLogger.Info("this should appear")

	if testLogger.ContainsMessage("this should not appear") {
		t.Error("Debug message should not appear when level is Info")
	}
	if !testLogger.ContainsMessage("this should appear") {
		t.Error("Info message should appear when level is Info")
	}
}

func TestNewTestLoggerProvider(t *testing.T) {
	provider, buffer := NewTestLoggerProvider(LevelDebug)
	prev := SetLoggerProvider(provider)
	defer SetLoggerProvider(prev)

	GetLogger().Info("provider test message")
	GetLoggerWithName("dataset").Info("named logger message")

	out := buffer.String()
	for _, want := range []string{"provider test message", "named logger message", `"ml.component":"dataset"`} {
		if !strings.Contains(out, want) {
			t.Errorf("%q not found in %s", want, out)
		}
	}

	provider.SetLevel(LevelError)
	GetLogger().Info("suppressed")
	if provider.Logger().ContainsMessage("suppressed") {
		t.Error("SetLevel should raise the minimum level")
	}
}

func TestSetupLogger(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	if err := SetupLogger("info", &buf); err != nil {
		t.Fatalf("SetupLogger: %v", err)
	}

	err := errors.NewValueError("StandardScaler.Fit", "empty data")
	slog.Error("fit failed", ErrAttr(err))
	slog.Debug("hidden")

	var entry map[string]interface{}
	line := strings.TrimSpace(buf.String())
	if strings.Contains(line, "\n") {
		t.Fatalf("expected a single record, got %q", line)
	}
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["severity"] != "ERROR" || entry["message"] != "fit failed" {
		t.Errorf("unexpected entry: %v", entry)
	}
	if st, _ := entry[StacktraceAttrKey].(string); st == "" {
		t.Error("expected stacktrace attribute for cockroachdb error")
	}

	if err := SetupLogger("loud", &buf); err == nil {
		t.Error("expected invalid level to be rejected")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		ok   bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"", slog.LevelInfo, true},
		{"warning", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"trace", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParseLevel(%q) err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSetupWarnings(t *testing.T) {
	var buf bytes.Buffer
	SetupWarnings(&buf)
	defer errors.SetZerologWarnFunc(nil)

	errors.Warn(errors.NewConvergenceWarning("LogisticRegression", 100, ""))

	var entry map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("zerolog output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["level"] != "warn" {
		t.Errorf("level = %v, want warn", entry["level"])
	}
	w, ok := entry["warning"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected structured warning object, got %v", entry)
	}
	if w["type"] != "ConvergenceWarning" || w["iterations"] != 100.0 {
		t.Errorf("unexpected warning payload: %v", w)
	}
}

func TestConcurrentLogging(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelInfo)
	child := testLogger.With(ModelNameKey, "RFECV")

	done := make(chan struct{})
	for i := 0; i < 4; i++ {
		go func(id int) {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 5; j++ {
				child.Info("fold", FoldKey, id, "message_id", j)
			}
		}(i)
	}
	for i := 0; i < 4; i++ {
		<-done
	}

	entries, err := testLogger.GetLogEntries()
	if err != nil {
		t.Fatalf("Failed to parse log entries: %v", err)
	}
	if len(entries) != 20 {
		t.Errorf("Expected 20 log entries, got %d", len(entries))
	}
}

func BenchmarkLoggingWithContext(b *testing.B) {
	testLogger, _ := NewTestLogger(LevelInfo)
	contextLogger := testLogger.With(ModelNameKey, "BenchmarkModel")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		contextLogger.Info("benchmark message", IterationKey, i, SamplesKey, 1000)
	}
}
