package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestNewWithWriterFiltersLevelAndWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, slog.LevelWarn)

	logger.Info("hidden")
	logger.Warn("router disconnect failed", "address", "10.0.0.1:8728")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("output is not a single JSON line: %q (%v)", buf.String(), err)
	}
	if entry["msg"] != "router disconnect failed" || entry["address"] != "10.0.0.1:8728" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}
