package testsupport

import (
	"context"
	"testing"

	"pitchctl/internal/config"
	"pitchctl/internal/pitch"
	"pitchctl/internal/sessionstore"
)

// MustOpenStore opens a sessionstore.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *sessionstore.Store {
	t.Helper()

	store, err := sessionstore.Open(cfg)
	if err != nil {
		t.Fatalf("sessionstore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SaveSession stores snap under name, failing the test on error.
func SaveSession(t testing.TB, store *sessionstore.Store, name string, snap pitch.Snapshot) {
	t.Helper()

	if err := store.Save(context.Background(), name, snap); err != nil {
		t.Fatalf("store.Save: %v", err)
	}
}

// StartedSnapshot returns a snapshot holding pitchID with an empty cache.
func StartedSnapshot(pitchID, transcriptionTask string) pitch.Snapshot {
	return pitch.Snapshot{
		State:      pitch.State{PitchID: pitchID, TranscriptionTaskID: transcriptionTask},
		Transcript: pitch.Transcript{},
	}
}
