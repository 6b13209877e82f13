package sessionstore_test

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"pitchctl/internal/pitch"
	"pitchctl/internal/services"
	"pitchctl/internal/sessionstore"
	"pitchctl/internal/testsupport"
)

func TestOpenCreatesDatabase(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	if store.Path() != filepath.Join(cfg.Paths.StateDir, "sessions.db") {
		t.Fatalf("unexpected db path %s", store.Path())
	}
	if _, ok, err := store.Load(context.Background(), sessionstore.DefaultSession); err != nil || ok {
		t.Fatalf("expected empty store, got ok=%v err=%v", ok, err)
	}

	// Reopening an initialized database must pass the version check.
	reopened, err := sessionstore.OpenPath(store.Path())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	reopened.Close()
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	doc, err := pitch.ParseReferenceDocument(json.RawMessage(`{"id":7,"filename":"brief.pdf","size":120}`))
	if err != nil {
		t.Fatal(err)
	}
	snap := pitch.Snapshot{
		State: pitch.State{PitchID: "p1", TranscriptionTaskID: "t1", SynthesisTaskID: "tts-1"},
		Transcript: pitch.Transcript{
			json.RawMessage(`{"title":"intro"}`),
			json.RawMessage(`{"title":"outro"}`),
		},
		Documents: []pitch.ReferenceDocument{doc},
	}
	testsupport.SaveSession(t, store, "demo", snap)

	record, ok, err := store.Load(ctx, "demo")
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if record.Snapshot.State != snap.State {
		t.Fatalf("state mismatch %+v", record.Snapshot.State)
	}
	if !record.Snapshot.Transcript.Equal(snap.Transcript) {
		t.Fatalf("transcript mismatch %v", record.Snapshot.Transcript)
	}
	docs := record.Snapshot.Documents
	if len(docs) != 1 || docs[0].ID != "7" || docs[0].Filename != "brief.pdf" || string(docs[0].Raw) != `{"id":7,"filename":"brief.pdf","size":120}` {
		t.Fatalf("documents mismatch %+v", docs)
	}
	if record.CreatedAt.IsZero() || record.UpdatedAt.Before(record.CreatedAt) {
		t.Fatalf("unexpected timestamps %v %v", record.CreatedAt, record.UpdatedAt)
	}

	snap.State = pitch.State{PitchID: "p2"}
	snap.Transcript = nil
	snap.Documents = nil
	testsupport.SaveSession(t, store, "demo", snap)
	record, _, err = store.Load(ctx, "demo")
	if err != nil {
		t.Fatal(err)
	}
	if record.Snapshot.State.PitchID != "p2" || record.Snapshot.State.SynthesisTaskID != "" {
		t.Fatalf("update not applied: %+v", record.Snapshot.State)
	}
	if record.Snapshot.Transcript == nil || len(record.Snapshot.Transcript) != 0 || len(record.Snapshot.Documents) != 0 {
		t.Fatalf("expected empty caches, got %+v", record.Snapshot)
	}
}

func TestListAndDelete(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.SaveSession(t, store, "a", testsupport.StartedSnapshot("p1", ""))
	testsupport.SaveSession(t, store, "b", testsupport.StartedSnapshot("p2", ""))

	records, err := store.List(ctx)
	if err != nil || len(records) != 2 {
		t.Fatalf("List = %d records, %v", len(records), err)
	}
	if records[0].Name != "b" {
		t.Fatalf("expected most recent first, got %s", records[0].Name)
	}

	deleted, err := store.Delete(ctx, "a")
	if err != nil || !deleted {
		t.Fatalf("Delete = %v, %v", deleted, err)
	}
	deleted, err = store.Delete(ctx, "a")
	if err != nil || deleted {
		t.Fatalf("second Delete = %v, %v", deleted, err)
	}
}

func TestStageHistory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	testsupport.SaveSession(t, store, "demo", testsupport.StartedSnapshot("p1", "t1"))

	entries := []sessionstore.StageEntry{
		{PitchID: "p1", Pipeline: pitch.PipelineTranscription, Code: 0, Stage: "KICKOFF"},
		{PitchID: "p1", Pipeline: pitch.PipelineSynthesis, TaskID: "tts-1", Code: 101, Stage: "PROCESSING"},
		{PitchID: "p1", Pipeline: pitch.PipelineSynthesis, TaskID: "tts-1", Code: 199, Stage: "FAILED"},
		{PitchID: "p1", Pipeline: pitch.PipelineSynthesis, TaskID: "tts-2", Code: 102, Stage: "AUDIO"},
	}
	for _, entry := range entries {
		if err := store.RecordStage(ctx, "demo", entry); err != nil {
			t.Fatalf("RecordStage: %v", err)
		}
	}

	history, err := store.History(ctx, "demo")
	if err != nil || len(history) != 4 {
		t.Fatalf("History = %d, %v", len(history), err)
	}
	if history[0].Stage != "KICKOFF" || history[0].TaskID != "" || history[0].ObservedAt.IsZero() {
		t.Fatalf("unexpected first entry %+v", history[0])
	}

	last, ok, err := store.LastStage(ctx, "demo", "p1", pitch.PipelineTranscription, "")
	if err != nil || !ok || last.Code != 0 {
		t.Fatalf("LastStage = %+v, %v, %v", last, ok, err)
	}

	failed, err := store.SynthesisFailed(ctx, "demo", "p1", "tts-1")
	if err != nil || !failed {
		t.Fatalf("expected tts-1 failed, got %v, %v", failed, err)
	}
	failed, err = store.SynthesisFailed(ctx, "demo", "p1", "tts-2")
	if err != nil || failed {
		t.Fatalf("expected tts-2 live, got %v, %v", failed, err)
	}
	if failed, _ := store.SynthesisFailed(ctx, "demo", "p1", ""); failed {
		t.Fatal("empty task id cannot have failed")
	}

	// The same task id under a later pitch is a different task.
	failed, err = store.SynthesisFailed(ctx, "demo", "p2", "tts-1")
	if err != nil || failed {
		t.Fatalf("expected tts-1 of p2 live, got %v, %v", failed, err)
	}
	if err := store.RecordStage(ctx, "demo", sessionstore.StageEntry{PitchID: "p2", Pipeline: pitch.PipelineSynthesis, TaskID: "tts-1", Code: 103, Stage: "VIDEO"}); err != nil {
		t.Fatal(err)
	}
	failed, err = store.SynthesisFailed(ctx, "demo", "p1", "tts-1")
	if err != nil || !failed {
		t.Fatalf("p1 tts-1 should stay failed, got %v, %v", failed, err)
	}
	failed, err = store.SynthesisFailed(ctx, "demo", "p2", "tts-1")
	if err != nil || failed {
		t.Fatalf("p2 tts-1 should be live, got %v, %v", failed, err)
	}

	if _, err := store.Delete(ctx, "demo"); err != nil {
		t.Fatal(err)
	}
	history, err = store.History(ctx, "demo")
	if err != nil || len(history) != 0 {
		t.Fatalf("expected history removed with session, got %d, %v", len(history), err)
	}
}

func TestRecordStageRequiresSession(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	err := store.RecordStage(context.Background(), "ghost", sessionstore.StageEntry{PitchID: "p1", Pipeline: pitch.PipelineSynthesis, Stage: "AUDIO", Code: 102})
	if err == nil {
		t.Fatal("expected foreign key failure for unknown session")
	}
}

func TestLockIsExclusive(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	lock, err := store.Lock("demo")
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if _, err := store.Lock("demo"); !errors.Is(err, sessionstore.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	other, err := store.Lock("other")
	if err != nil {
		t.Fatalf("independent session should lock: %v", err)
	}
	defer other.Release()

	if err := lock.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	again, err := store.Lock("demo")
	if err != nil {
		t.Fatalf("relock after release: %v", err)
	}
	again.Release()
}

func TestValidateName(t *testing.T) {
	for _, good := range []string{"default", "q3-launch", "v1.2_final"} {
		if err := sessionstore.ValidateName(good); err != nil {
			t.Fatalf("%q: %v", good, err)
		}
	}
	for _, bad := range []string{"", "../etc", "a/b", "-x", "has space"} {
		if err := sessionstore.ValidateName(bad); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("%q: expected validation error, got %v", bad, err)
		}
	}
}
