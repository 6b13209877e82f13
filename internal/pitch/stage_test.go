package pitch

import (
	"errors"
	"testing"

	"pitchctl/internal/services"
)

func TestTranscriptionStageMapping(t *testing.T) {
	want := map[int]string{0: "KICKOFF", 1: "SEGMENT", 2: "DRAFT", 3: "GEN_TRANSCRIPT", 4: "FINISH"}
	for code, name := range want {
		stage, err := TranscriptionStageFromCode(code)
		if err != nil {
			t.Fatalf("code %d: %v", code, err)
		}
		if stage.String() != name {
			t.Fatalf("code %d: got %s want %s", code, stage, name)
		}
		if stage.Terminal() != (code == 4) {
			t.Fatalf("code %d: unexpected Terminal()=%v", code, stage.Terminal())
		}
	}
}

func TestTranscriptionStageRejectsUnknownCodes(t *testing.T) {
	for _, code := range []int{-1, 5, 99, 101} {
		_, err := TranscriptionStageFromCode(code)
		var unmapped *UnmappedStatusError
		if !errors.As(err, &unmapped) {
			t.Fatalf("code %d: expected UnmappedStatusError, got %v", code, err)
		}
		if unmapped.Code != code || unmapped.Pipeline != PipelineTranscription {
			t.Fatalf("code %d: unexpected error fields %+v", code, unmapped)
		}
		if !errors.Is(err, services.ErrUnmappedStatus) {
			t.Fatalf("code %d: expected ErrUnmappedStatus marker", code)
		}
	}
}

func TestSynthesisStageMapping(t *testing.T) {
	tests := []struct {
		code     int
		name     string
		terminal bool
		failed   bool
	}{
		{101, "PROCESSING", false, false},
		{102, "AUDIO", false, false},
		{103, "VIDEO", false, false},
		{104, "FINISH", true, false},
		{199, "FAILED", true, true},
	}
	for _, tt := range tests {
		stage, err := SynthesisStageFromCode(tt.code)
		if err != nil {
			t.Fatalf("code %d: %v", tt.code, err)
		}
		if stage.String() != tt.name || stage.Terminal() != tt.terminal || stage.Failed() != tt.failed {
			t.Fatalf("code %d: got %s terminal=%v failed=%v", tt.code, stage, stage.Terminal(), stage.Failed())
		}
	}
	for _, code := range []int{0, 100, 105, 198, 200} {
		if _, err := SynthesisStageFromCode(code); !errors.Is(err, services.ErrUnmappedStatus) {
			t.Fatalf("code %d: expected unmapped error, got %v", code, err)
		}
	}
}

func TestParseProgress(t *testing.T) {
	p, err := ParseProgress(" 3:12 ")
	if err != nil {
		t.Fatalf("ParseProgress: %v", err)
	}
	if p != (Progress{Done: 3, Total: 12}) || p.Percent() != 25 || p.String() != "3/12" {
		t.Fatalf("unexpected progress %+v", p)
	}
	if (Progress{}).Percent() != 0 {
		t.Fatal("expected zero percent for unknown total")
	}
	for _, bad := range []string{"", "3", "a:b", "5:3", "-1:3"} {
		if _, err := ParseProgress(bad); !errors.Is(err, services.ErrMalformedResponse) {
			t.Fatalf("%q: expected malformed error, got %v", bad, err)
		}
	}
}
