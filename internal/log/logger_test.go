package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLoggerFormats(t *testing.T) {
	var buf bytes.Buffer

	l := newLogger(&buf, "INFO", "text")
	l.Info("plain message")
	if !strings.Contains(buf.String(), "msg=\"plain message\"") {
		t.Errorf("text format expected key=value output, got %q", buf.String())
	}

	buf.Reset()
	l = newLogger(&buf, "INFO", "json")
	l.Info("json message")
	var out map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("json format expected JSON output: %v", err)
	}
	if out["msg"] != "json message" {
		t.Errorf("msg = %v, want 'json message'", out["msg"])
	}
}

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer

	l := newLogger(&buf, "WARN", "json")
	l.Info("suppressed")
	if buf.Len() != 0 {
		t.Errorf("INFO should be suppressed at WARN level, got %q", buf.String())
	}
	l.Warn("emitted")
	if buf.Len() == 0 {
		t.Error("WARN should be emitted at WARN level")
	}

	// Invalid level falls back to INFO.
	buf.Reset()
	l = newLogger(&buf, "bogus", "json")
	l.Info("visible")
	if buf.Len() == 0 {
		t.Error("invalid level should fall back to INFO")
	}
}

func TestContextHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger = slog.New(slog.NewJSONHandler(&buf, nil))

	WithComponent("relay").Info("hello")

	var out map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("Failed to decode JSON: %v", err)
	}
	if out["component"] != "relay" {
		t.Errorf("Expected component 'relay', got %v", out["component"])
	}

	buf.Reset()
	WithChannel("#ops").Info("channel msg")
	out = map[string]any{}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("Failed to decode JSON: %v", err)
	}
	if out["channel"] != "#ops" {
		t.Errorf("Expected channel '#ops', got %v", out["channel"])
	}

	buf.Reset()
	WithDelivery("d-123").Info("delivery msg")
	out = map[string]any{}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("Failed to decode JSON: %v", err)
	}
	if out["delivery_id"] != "d-123" {
		t.Errorf("Expected delivery_id 'd-123', got %v", out["delivery_id"])
	}
}
