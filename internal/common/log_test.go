// File path: internal/common/log_test.go
package common

import (
	"testing"
	"time"

	"log/slog"
)

func record(msg string, attrs ...slog.Attr) slog.Record {
	rec := slog.NewRecord(time.Now(), slog.LevelInfo, msg, 0)
	rec.AddAttrs(attrs...)
	return rec
}

func TestBuildLogEntryComponent(t *testing.T) {
	entry := buildLogEntry(record("store: opening database", slog.String("path", "data/povd.db")))
	if entry.Component != "store" {
		t.Fatalf("component: %q", entry.Component)
	}
	if entry.Message != "store: opening database" {
		t.Fatalf("message: %q", entry.Message)
	}
	if entry.Attributes["path"] != "data/povd.db" {
		t.Fatalf("attributes: %+v", entry.Attributes)
	}
}

func TestBuildLogEntryNoComponentForPlainMessages(t *testing.T) {
	if entry := buildLogEntry(record("request failed")); entry.Component != "" {
		t.Fatalf("unexpected component: %q", entry.Component)
	}
	// A colon after a multi-word prefix is prose, not a component tag.
	if entry := buildLogEntry(record("something went wrong: timeout")); entry.Component != "" {
		t.Fatalf("unexpected component: %q", entry.Component)
	}
}

func TestLogSinkBounded(t *testing.T) {
	s := newLogSink(3)
	for _, msg := range []string{"a", "b", "c", "d"} {
		s.capture(record(msg))
	}
	entries := s.entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 retained entries, got %d", len(entries))
	}
	if entries[0].Message != "b" || entries[2].Message != "d" {
		t.Fatalf("oldest entry not evicted: %+v", entries)
	}
}

func TestLoggerCapturesHistory(t *testing.T) {
	Logger().Info("logtest: captured entry", "k", "v")
	found := false
	for _, entry := range LogEntries() {
		if entry.Message == "logtest: captured entry" && entry.Component == "logtest" {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("entry not captured in history")
	}
}
