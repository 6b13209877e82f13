package pitch

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"pitchctl/internal/logging"
	"pitchctl/internal/services"
)

// Upload is a file handed to the backend as a multipart "file" field.
type Upload struct {
	Filename string
	Content  io.Reader
	// Keywords are optional metadata sent as repeated "keywords" fields.
	Keywords []string
}

// Gateway performs the backend calls a session needs. Each method returns
// the decoded response object; interpreting it is the session's job.
type Gateway interface {
	UploadMaster(ctx context.Context, upload Upload) (Body, error)
	UploadReferenceDoc(ctx context.Context, pitchID string, upload Upload) (Body, error)
	ResumeTranscription(ctx context.Context, pitchID string) (Body, error)
	TranscriptionStatus(ctx context.Context, pitchID string) (Body, error)
	TaskProgress(ctx context.Context, taskID string) (Body, error)
	SynthesisStatus(ctx context.Context, pitchID, taskID string) (Body, error)
	GetTranscript(ctx context.Context, pitchID string) (Body, error)
	PutTranscript(ctx context.Context, pitchID string, transcript Transcript) (Body, error)
	TriggerSynthesis(ctx context.Context, pitchID string) (Body, error)
	ListDocuments(ctx context.Context, pitchID string) (Body, error)
	DeleteDocument(ctx context.Context, pitchID, docID string) (Body, error)
	Converse(ctx context.Context, pitchID, query string) (Body, error)
}

// State is the identity of the pitch a session currently holds. An empty
// PitchID means no pitch has been started.
type State struct {
	PitchID             string `json:"pitch_id"`
	TranscriptionTaskID string `json:"transcription_task_id,omitempty"`
	SynthesisTaskID     string `json:"synthesis_task_id,omitempty"`
}

// Snapshot is everything a session caches, used to carry it across process
// boundaries.
type Snapshot struct {
	State      State
	Transcript Transcript
	Documents  []ReferenceDocument
}

// StartResult reports the identity assigned by a successful upload.
type StartResult struct {
	PitchID             string
	TranscriptionTaskID string
}

// Session tracks one pitch. It is not safe for concurrent mutation.
type Session struct {
	gateway    Gateway
	locator    Locator
	logger     *slog.Logger
	state      State
	transcript Transcript
	docs       documentSet
}

// New returns an empty session.
func New(gateway Gateway, locator Locator, logger *slog.Logger) *Session {
	return &Session{
		gateway:    gateway,
		locator:    locator,
		logger:     logging.NewComponentLogger(logger, "pitch"),
		transcript: Transcript{},
		docs:       newDocumentSet(),
	}
}

// Restore rebuilds a session from a previously taken snapshot.
func Restore(gateway Gateway, locator Locator, logger *slog.Logger, snap Snapshot) *Session {
	s := New(gateway, locator, logger)
	s.state = snap.State
	s.transcript = snap.Transcript.Clone()
	s.docs.replace(snap.Documents)
	return s
}

// Snapshot returns a deep copy of the session's caches.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		State:      s.state,
		Transcript: s.transcript.Clone(),
		Documents:  s.docs.list(),
	}
}

// State returns a copy of the current identity.
func (s *Session) State() State {
	return s.state
}

// PitchID returns the held pitch id, empty when unset.
func (s *Session) PitchID() string {
	return s.state.PitchID
}

// Locator returns the locator used for derived URLs.
func (s *Session) Locator() Locator {
	return s.locator
}

// StartPitch uploads a master document and, only on success, replaces the
// session's identity and discards both caches.
func (s *Session) StartPitch(ctx context.Context, upload Upload) (StartResult, error) {
	if upload.Content == nil {
		return StartResult{}, services.Wrap(services.ErrValidation, "pitch", "start pitch", "upload has no content", nil)
	}
	body, err := s.gateway.UploadMaster(ctx, upload)
	if err != nil {
		return StartResult{}, err
	}
	pitchID, ok := body.ID("pitch_id")
	if !ok {
		pitchID, ok = body.ID("pitch_uid")
	}
	if !ok {
		return StartResult{}, errMalformed("start pitch", "upload response carries no pitch id")
	}
	taskID, _ := body.ID("task_id")

	s.state = State{PitchID: pitchID, TranscriptionTaskID: taskID}
	s.transcript = Transcript{}
	s.docs = newDocumentSet()

	s.log(ctx).Info("pitch started",
		logging.String(logging.FieldTaskID, taskID),
		logging.String("filename", upload.Filename),
	)
	return StartResult{PitchID: pitchID, TranscriptionTaskID: taskID}, nil
}

// ResumeTranscription asks the backend to continue a paused transcription.
func (s *Session) ResumeTranscription(ctx context.Context) error {
	if s.state.PitchID == "" {
		return errNoPitch("resume transcription")
	}
	body, err := s.gateway.ResumeTranscription(ctx, s.state.PitchID)
	if err != nil {
		return err
	}
	attrs := []logging.Attr{}
	if msg, ok := body.Message(); ok {
		attrs = append(attrs, logging.String("message", msg))
	}
	s.log(ctx).Info("transcription resumed", logging.Args(attrs...)...)
	return nil
}

// MasterDocumentURL returns the viewer location for the master document.
func (s *Session) MasterDocumentURL() (string, error) {
	if s.state.PitchID == "" {
		return "", errNoPitch("master document url")
	}
	return s.locator.MasterDocument(s.state.PitchID), nil
}

// VideoURL returns the location of a named rendered video.
func (s *Session) VideoURL(name string) (string, error) {
	if s.state.PitchID == "" {
		return "", errNoPitch("video url")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", services.Wrap(services.ErrValidation, "pitch", "video url", "video name is empty", nil)
	}
	return s.locator.Video(s.state.PitchID, name), nil
}

// StreamingURL returns the streaming location for the pitch.
func (s *Session) StreamingURL() (string, error) {
	if s.state.PitchID == "" {
		return "", errNoPitch("streaming url")
	}
	return s.locator.Streaming(s.state.PitchID), nil
}

func (s *Session) log(ctx context.Context) *slog.Logger {
	return logging.WithContext(services.WithPitchID(ctx, s.state.PitchID), s.logger)
}
