package pitch

import (
	"bytes"
	"context"
	"encoding/json"

	"pitchctl/internal/logging"
)

// Chapter is one transcript entry, kept as the exact JSON the server sent.
type Chapter = json.RawMessage

// Transcript is the ordered chapter list of a pitch.
type Transcript []Chapter

// Clone returns a deep copy. The copy of an empty or nil transcript is a
// non-nil empty slice.
func (t Transcript) Clone() Transcript {
	out := make(Transcript, len(t))
	for i, chapter := range t {
		out[i] = append(json.RawMessage(nil), chapter...)
	}
	return out
}

// Equal reports whether both transcripts hold byte-identical chapters.
func (t Transcript) Equal(other Transcript) bool {
	if len(t) != len(other) {
		return false
	}
	for i := range t {
		if !bytes.Equal(t[i], other[i]) {
			return false
		}
	}
	return true
}

// Transcript returns a copy of the cached transcript.
func (s *Session) Transcript() Transcript {
	return s.transcript.Clone()
}

// EditTranscript replaces the local cache without contacting the backend.
func (s *Session) EditTranscript(t Transcript) {
	s.transcript = t.Clone()
}

// FetchTranscript loads the transcript from the backend. A "nothing here"
// reply resets the cache to empty.
func (s *Session) FetchTranscript(ctx context.Context) (Transcript, error) {
	if s.state.PitchID == "" {
		return nil, errNoPitch("fetch transcript")
	}
	body, err := s.gateway.GetTranscript(ctx, s.state.PitchID)
	if err != nil {
		return nil, err
	}
	if err := s.applyTranscript(ctx, "fetch transcript", body); err != nil {
		return nil, err
	}
	return s.transcript.Clone(), nil
}

// SaveTranscript sends edits to the backend and caches the server's echo.
func (s *Session) SaveTranscript(ctx context.Context, edits Transcript) (Transcript, error) {
	if s.state.PitchID == "" {
		return nil, errNoPitch("save transcript")
	}
	body, err := s.gateway.PutTranscript(ctx, s.state.PitchID, edits.Clone())
	if err != nil {
		return nil, err
	}
	if err := s.applyTranscript(ctx, "save transcript", body); err != nil {
		return nil, err
	}
	return s.transcript.Clone(), nil
}

func (s *Session) applyTranscript(ctx context.Context, operation string, body Body) error {
	kind, msg := classify(body, "transcripts")
	switch kind {
	case outcomeSentinel:
		s.transcript = Transcript{}
		s.log(ctx).Info("transcript not available; cache cleared",
			logging.String("operation", operation),
			logging.String("message", msg),
		)
		return nil
	case outcomeMalformed:
		return errMalformed(operation, "response has neither transcripts nor message")
	}
	var chapters []json.RawMessage
	if raw := body["transcripts"]; !isJSONNull(raw) {
		if err := json.Unmarshal(raw, &chapters); err != nil {
			return errMalformed(operation, "transcripts is not a list")
		}
	}
	s.transcript = Transcript(chapters).Clone()
	s.log(ctx).Debug("transcript cached",
		logging.String("operation", operation),
		logging.Int("chapters", len(s.transcript)),
	)
	return nil
}
