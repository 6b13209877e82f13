package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNewFanoutHandlerNilHandlers(t *testing.T) {
	h := newFanoutHandler(nil, nil)
	if _, ok := h.(NoopHandler); !ok {
		t.Errorf("expected NoopHandler for all nil handlers, got %T", h)
	}
}

func TestNewFanoutHandlerSingleHandlerUnwrapped(t *testing.T) {
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	if h := newFanoutHandler(nil, inner); h != inner {
		t.Error("expected single non-nil handler to be returned unwrapped")
	}
}

func TestFanoutHandlerRespectsEachLevel(t *testing.T) {
	var console, file bytes.Buffer
	h := newFanoutHandler(
		slog.NewTextHandler(&console, &slog.HandlerOptions{Level: slog.LevelWarn}),
		slog.NewTextHandler(&file, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	logger := slog.New(h).With("pitch_id", "p1")
	logger.Debug("poll tick")
	logger.Warn("no documents")

	if strings.Contains(console.String(), "poll tick") {
		t.Fatalf("console should not receive debug: %q", console.String())
	}
	if !strings.Contains(console.String(), "no documents") {
		t.Fatalf("console should receive warn: %q", console.String())
	}
	for _, want := range []string{"poll tick", "no documents", "pitch_id=p1"} {
		if !strings.Contains(file.String(), want) {
			t.Fatalf("file output missing %q: %q", want, file.String())
		}
	}
	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected fanout enabled when any handler accepts the level")
	}
}
