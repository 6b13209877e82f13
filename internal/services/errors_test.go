package services_test

import (
	"errors"
	"strings"
	"testing"

	"pitchctl/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrTransport, "gateway", "upload master", "request failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"gateway", "upload master", "request failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarkerAndDetail(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected default transport marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestHintByMarker(t *testing.T) {
	cases := map[error]string{
		services.Wrap(services.ErrPrecondition, "pitch", "video url", "no pitch", nil): "pitchctl upload",
		services.Wrap(services.ErrUnmappedStatus, "pitch", "poll", "", nil):           "does not know",
		services.Wrap(services.ErrTransport, "gateway", "get", "", nil):                "backend.base_url",
	}
	for err, fragment := range cases {
		if hint := services.Hint(err); !strings.Contains(hint, fragment) {
			t.Fatalf("hint for %v = %q, want fragment %q", err, hint, fragment)
		}
	}
	if services.Hint(nil) != "" {
		t.Fatal("expected empty hint for nil error")
	}
}
