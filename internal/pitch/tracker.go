package pitch

import (
	"context"

	"pitchctl/internal/logging"
	"pitchctl/internal/services"
)

// PollTranscriptionStage fetches the current transcription stage once.
func (s *Session) PollTranscriptionStage(ctx context.Context) (TranscriptionStage, error) {
	if s.state.PitchID == "" {
		return 0, errNoPitch("poll transcription")
	}
	body, err := s.gateway.TranscriptionStatus(ctx, s.state.PitchID)
	if err != nil {
		return 0, err
	}
	code, ok := body.Int("status")
	if !ok {
		return 0, errMalformed("poll transcription", "status code missing or not an integer")
	}
	stage, err := TranscriptionStageFromCode(code)
	if err != nil {
		return 0, err
	}
	s.log(services.WithPipeline(ctx, string(PipelineTranscription))).Debug("transcription stage polled",
		logging.String(logging.FieldStage, stage.String()),
		logging.Int("code", code),
	)
	return stage, nil
}

// TranscriptionProgress fetches the page-level progress of the transcription
// task issued by the last upload.
func (s *Session) TranscriptionProgress(ctx context.Context) (Progress, error) {
	if s.state.PitchID == "" {
		return Progress{}, errNoPitch("transcription progress")
	}
	if s.state.TranscriptionTaskID == "" {
		return Progress{}, services.Wrap(services.ErrPrecondition, "pitch", "transcription progress", "no transcription task id", nil)
	}
	body, err := s.gateway.TaskProgress(ctx, s.state.TranscriptionTaskID)
	if err != nil {
		return Progress{}, err
	}
	value, ok := body.String("progress")
	if !ok {
		return Progress{}, errMalformed("transcription progress", "progress missing or not a string")
	}
	return ParseProgress(value)
}

// TriggerSynthesis starts video synthesis and records the new task id,
// replacing any previous one.
func (s *Session) TriggerSynthesis(ctx context.Context) (string, error) {
	if s.state.PitchID == "" {
		return "", errNoPitch("trigger synthesis")
	}
	body, err := s.gateway.TriggerSynthesis(ctx, s.state.PitchID)
	if err != nil {
		return "", err
	}
	taskID, ok := body.ID("task_id")
	if !ok {
		return "", errMalformed("trigger synthesis", "response carries no task id")
	}
	previous := s.state.SynthesisTaskID
	s.state.SynthesisTaskID = taskID
	s.log(ctx).Info("synthesis triggered",
		logging.String(logging.FieldTaskID, taskID),
		logging.String("previous_task_id", previous),
	)
	return taskID, nil
}

// PollSynthesisStage fetches the current stage of the synthesis task once.
func (s *Session) PollSynthesisStage(ctx context.Context) (SynthesisStage, error) {
	if s.state.PitchID == "" {
		return 0, errNoPitch("poll synthesis")
	}
	if s.state.SynthesisTaskID == "" {
		return 0, services.Wrap(services.ErrPrecondition, "pitch", "poll synthesis", "no active synthesis task", nil)
	}
	body, err := s.gateway.SynthesisStatus(ctx, s.state.PitchID, s.state.SynthesisTaskID)
	if err != nil {
		return 0, err
	}
	code, ok := body.Int("status")
	if !ok {
		return 0, errMalformed("poll synthesis", "status code missing or not an integer")
	}
	stage, err := SynthesisStageFromCode(code)
	if err != nil {
		return 0, err
	}
	logger := s.log(services.WithPipeline(ctx, string(PipelineSynthesis)))
	if stage.Failed() {
		logging.WarnWithContext(logger, "synthesis task failed", "synthesis_failed",
			logging.String(logging.FieldTaskID, s.state.SynthesisTaskID),
			logging.String(logging.FieldErrorHint, "trigger synthesis again to start a new task"),
			logging.String(logging.FieldImpact, "no video produced for this task"),
		)
		return stage, nil
	}
	logger.Debug("synthesis stage polled",
		logging.String(logging.FieldStage, stage.String()),
		logging.String(logging.FieldTaskID, s.state.SynthesisTaskID),
	)
	return stage, nil
}
