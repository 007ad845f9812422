package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  command  ", Value: "  ingest  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != "command" || fields[0].String != "ingest" {
		t.Fatalf("unexpected command field: %+v", fields[0])
	}

	empty := StringFields()
	if len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	enriched := WithFields(logger, zap.String(FieldRunID, "r-1"))
	enriched.Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	if got := entries[0].ContextMap()[FieldRunID]; got != "r-1" {
		t.Fatalf("expected run id r-1, got %q", got)
	}

	enriched = WithFields(nil, zap.String("baz", "qux"))
	if enriched == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}
	enriched.Info("another log")
}

func TestForJobAndCommand(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := ForJob(ForCommand(zap.New(core), "review"), "3f2a9c0d11be")
	logger.Info("status changed")

	ctx := observed.All()[0].ContextMap()
	if ctx[FieldCommand] != "review" {
		t.Fatalf("expected command review, got %q", ctx[FieldCommand])
	}
	if ctx[FieldJobID] != "3f2a9c0d11be" {
		t.Fatalf("expected job id, got %q", ctx[FieldJobID])
	}

	// empty job id adds nothing
	observed.TakeAll()
	ForJob(zap.New(core), " ").Info("x")
	if _, ok := observed.All()[0].ContextMap()[FieldJobID]; ok {
		t.Fatalf("expected no job id field")
	}
}

func TestTee(t *testing.T) {
	primary, primaryLogs := observer.New(zapcore.DebugLevel)
	extra, extraLogs := observer.New(zapcore.WarnLevel)

	logger := Tee(zap.New(primary), extra)
	logger.Info("info only")
	logger.Warn("both")

	if primaryLogs.Len() != 2 {
		t.Fatalf("expected 2 primary entries, got %d", primaryLogs.Len())
	}
	if extraLogs.Len() != 1 || extraLogs.All()[0].Message != "both" {
		t.Fatalf("expected only the warning in the extra core, got %+v", extraLogs.All())
	}

	if Tee(nil, nil) == nil {
		t.Fatalf("expected fallback logger")
	}
}

func TestNew(t *testing.T) {
	for _, json := range []bool{true, false} {
		l, err := New(json, true)
		if err != nil {
			t.Fatalf("building logger: %v", err)
		}
		if !l.Core().Enabled(zapcore.DebugLevel) {
			t.Fatalf("expected debug level enabled")
		}
	}

	l, err := New(false, false)
	if err != nil {
		t.Fatalf("building logger: %v", err)
	}
	if l.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected debug level disabled")
	}
}
