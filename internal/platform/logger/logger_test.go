package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestSlogBridgeWritesJSONWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	zl := Build(Config{Level: "debug", Component: "test"}, &buf)
	log := NewSlog(&zl)

	ctx := WithRequestID(context.Background(), "abc123")
	log.InfoContext(ctx, "coord cache hit", "cep", "1000-001", "n", 2)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if line["msg"] != "coord cache hit" {
		t.Fatalf("msg=%v", line["msg"])
	}
	if line["request_id"] != "abc123" {
		t.Fatalf("request_id=%v want abc123", line["request_id"])
	}
	if line["cep"] != "1000-001" || line["component"] != "test" {
		t.Fatalf("unexpected fields: %v", line)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	zl := Build(Config{Level: "warn"}, &buf)
	log := NewSlog(&zl)

	log.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info line written at warn level: %q", buf.String())
	}
	log.Warn("kept")
	if buf.Len() == 0 {
		t.Fatalf("warn line missing")
	}
}
