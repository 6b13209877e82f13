// Package pitch holds the client-side state of one document-to-video
// production ("pitch") and reconciles it with the backend.
//
// A Session owns the pitch identity, the transcript cache, and the reference
// document set. Every network call goes through the Gateway interface; the
// session itself starts no goroutines, holds no locks, and never polls on its
// own. Callers drive polling (see package watch) and must serialize mutations
// of a single Session.
//
// Backend status codes are mapped to TranscriptionStage and SynthesisStage
// through exhaustive switches. Codes outside those tables surface as
// *UnmappedStatusError instead of a guessed stage.
package pitch
