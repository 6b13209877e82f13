package pitch

import (
	"fmt"
	"strconv"
	"strings"

	"pitchctl/internal/services"
)

// Pipeline names one of the two backend pipelines a session tracks.
type Pipeline string

const (
	PipelineTranscription Pipeline = "transcription"
	PipelineSynthesis     Pipeline = "synthesis"
)

// TranscriptionStage is the progress of the document transcription pipeline.
type TranscriptionStage int

const (
	StageKickoff             TranscriptionStage = 0
	StageSegment             TranscriptionStage = 1
	StageDraft               TranscriptionStage = 2
	StageGenTranscript       TranscriptionStage = 3
	StageTranscriptionFinish TranscriptionStage = 4
)

// TranscriptionStageFromCode maps a raw backend status code to a stage.
func TranscriptionStageFromCode(code int) (TranscriptionStage, error) {
	switch TranscriptionStage(code) {
	case StageKickoff, StageSegment, StageDraft, StageGenTranscript, StageTranscriptionFinish:
		return TranscriptionStage(code), nil
	default:
		return 0, &UnmappedStatusError{Pipeline: PipelineTranscription, Code: code}
	}
}

func (s TranscriptionStage) String() string {
	switch s {
	case StageKickoff:
		return "KICKOFF"
	case StageSegment:
		return "SEGMENT"
	case StageDraft:
		return "DRAFT"
	case StageGenTranscript:
		return "GEN_TRANSCRIPT"
	case StageTranscriptionFinish:
		return "FINISH"
	default:
		return "TranscriptionStage(" + strconv.Itoa(int(s)) + ")"
	}
}

// Terminal reports whether polling should stop.
func (s TranscriptionStage) Terminal() bool {
	return s == StageTranscriptionFinish
}

// SynthesisStage is the progress of the narrated video synthesis pipeline.
type SynthesisStage int

const (
	StageProcessing      SynthesisStage = 101
	StageAudio           SynthesisStage = 102
	StageVideo           SynthesisStage = 103
	StageSynthesisFinish SynthesisStage = 104
	// StageFailed is absorbing: a task that reports it will not progress.
	StageFailed SynthesisStage = 199
)

// SynthesisStageFromCode maps a raw backend status code to a stage.
func SynthesisStageFromCode(code int) (SynthesisStage, error) {
	switch SynthesisStage(code) {
	case StageProcessing, StageAudio, StageVideo, StageSynthesisFinish, StageFailed:
		return SynthesisStage(code), nil
	default:
		return 0, &UnmappedStatusError{Pipeline: PipelineSynthesis, Code: code}
	}
}

func (s SynthesisStage) String() string {
	switch s {
	case StageProcessing:
		return "PROCESSING"
	case StageAudio:
		return "AUDIO"
	case StageVideo:
		return "VIDEO"
	case StageSynthesisFinish:
		return "FINISH"
	case StageFailed:
		return "FAILED"
	default:
		return "SynthesisStage(" + strconv.Itoa(int(s)) + ")"
	}
}

// Terminal reports whether polling should stop.
func (s SynthesisStage) Terminal() bool {
	return s == StageSynthesisFinish || s == StageFailed
}

// Failed reports whether the task ended in the absorbing error state.
func (s SynthesisStage) Failed() bool {
	return s == StageFailed
}

// Progress is the page-level progress of a transcription task.
type Progress struct {
	Done  int
	Total int
}

// ParseProgress parses the backend's "done:total" progress string.
func ParseProgress(value string) (Progress, error) {
	doneText, totalText, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok {
		return Progress{}, services.Wrap(services.ErrMalformedResponse, "pitch", "parse progress", fmt.Sprintf("expected done:total, got %q", value), nil)
	}
	done, err := strconv.Atoi(strings.TrimSpace(doneText))
	if err != nil {
		return Progress{}, services.Wrap(services.ErrMalformedResponse, "pitch", "parse progress", "done count", err)
	}
	total, err := strconv.Atoi(strings.TrimSpace(totalText))
	if err != nil {
		return Progress{}, services.Wrap(services.ErrMalformedResponse, "pitch", "parse progress", "total count", err)
	}
	if done < 0 || total < 0 || done > total {
		return Progress{}, services.Wrap(services.ErrMalformedResponse, "pitch", "parse progress", fmt.Sprintf("out of range %q", value), nil)
	}
	return Progress{Done: done, Total: total}, nil
}

// Percent returns completion in [0,100]; an unknown total reports zero.
func (p Progress) Percent() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Done) * 100 / float64(p.Total)
}

func (p Progress) String() string {
	return fmt.Sprintf("%d/%d", p.Done, p.Total)
}
