package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNew_JSONFieldMap(t *testing.T) {
	var buf bytes.Buffer
	log := newWithOutput("debug", &buf)
	log.WithField("orderID", 7).Info("order placed")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	if entry["message"] != "order placed" {
		t.Fatalf("expected message field, got %v", entry)
	}
	if entry["severity"] != "info" {
		t.Fatalf("expected severity field, got %v", entry)
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Fatalf("expected timestamp field, got %v", entry)
	}
}

func TestNew_UnknownLevel(t *testing.T) {
	if got := New("loud").Level; got != logrus.InfoLevel {
		t.Fatalf("expected info level fallback, got %v", got)
	}
}
