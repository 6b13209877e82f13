package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"pitchctl/internal/gateway"
	"pitchctl/internal/pitch"
	"pitchctl/internal/services"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Backend", statusError, "unreachable", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Backend:", "[ERROR] unreachable")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Synthesis", statusOK, "Finish", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}

func TestStageLabel(t *testing.T) {
	cases := map[string]string{
		"KICKOFF":        "Kickoff",
		"GEN_TRANSCRIPT": "Gen Transcript",
		"FAILED":         "Failed",
	}
	for in, want := range cases {
		if got := stageLabel(in); got != want {
			t.Fatalf("stageLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStatusLines(t *testing.T) {
	line := transcriptionStatusLine(pitch.StageSegment, false)
	if !strings.Contains(line, "[INFO] Segment (2/5)") {
		t.Fatalf("unexpected transcription line %q", line)
	}
	line = synthesisStatusLine(pitch.StageFailed, "s1", false)
	if !strings.Contains(line, "[ERROR] Failed task s1") {
		t.Fatalf("unexpected synthesis line %q", line)
	}
	line = synthesisStatusLine(pitch.StageSynthesisFinish, "", false)
	if !strings.HasSuffix(line, "[OK] Finish") {
		t.Fatalf("unexpected synthesis line %q", line)
	}
}

func TestRetryablePollError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "server error", err: &gateway.StatusError{StatusCode: 502}, want: true},
		{name: "rate limited", err: &gateway.StatusError{StatusCode: 429}, want: true},
		{name: "not found", err: &gateway.StatusError{StatusCode: 404}, want: false},
		{name: "network", err: services.Wrap(services.ErrTransport, "gateway", "poll", "", errors.New("reset")), want: true},
		{name: "canceled", err: services.Wrap(services.ErrTransport, "gateway", "poll", "", context.Canceled), want: false},
		{name: "unmapped", err: &pitch.UnmappedStatusError{Pipeline: pitch.PipelineSynthesis, Code: 7}, want: false},
	}
	for _, tt := range tests {
		if got := retryablePollError(tt.err); got != tt.want {
			t.Fatalf("%s: retryablePollError = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestPrintErrorIncludesHint(t *testing.T) {
	var buf strings.Builder
	printError(&buf, services.Wrap(services.ErrValidation, "cli", "open upload", "file path is empty", nil))
	out := buf.String()
	requireContains(t, out, "Error: validation error")
	requireContains(t, out, "Hint: check the command arguments")
}
