package pitch_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"pitchctl/internal/pitch"
	"pitchctl/internal/services"
)

func TestFetchTranscriptSentinelClearsCache(t *testing.T) {
	gw := newFakeGateway()
	s := startedSession(gw)
	gw.reply("GetTranscript", `{"transcripts":[{"title":"intro","text":"hello"}]}`).
		reply("GetTranscript", `{"message":"transcript not ready"}`)
	ctx := context.Background()

	first, err := s.FetchTranscript(ctx)
	if err != nil || len(first) != 1 {
		t.Fatalf("first fetch: %v, %v", first, err)
	}
	second, err := s.FetchTranscript(ctx)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if second == nil || len(second) != 0 {
		t.Fatalf("expected empty transcript, got %v", second)
	}
	if len(s.Transcript()) != 0 {
		t.Fatalf("stale chapters remain: %v", s.Transcript())
	}
}

func TestTranscriptMessageOverridesChapters(t *testing.T) {
	gw := newFakeGateway()
	s := startedSession(gw)
	ctx := context.Background()
	gw.reply("GetTranscript", `{"transcripts":[{"c":1}],"message":null}`).
		reply("GetTranscript", `{"transcripts":[{"c":1}],"message":"no transcript yet"}`).
		reply("PutTranscript", `{"transcripts":[{"c":2}],"message":"transcript discarded"}`)

	if got, err := s.FetchTranscript(ctx); err != nil || len(got) != 1 {
		t.Fatalf("null message should be data: %v, %v", got, err)
	}
	got, err := s.FetchTranscript(ctx)
	if err != nil {
		t.Fatalf("FetchTranscript: %v", err)
	}
	if len(got) != 0 || len(s.Transcript()) != 0 {
		t.Fatalf("message should reset the cache, got %v", s.Transcript())
	}

	s.EditTranscript(pitch.Transcript{json.RawMessage(`{"c":3}`)})
	saved, err := s.SaveTranscript(ctx, s.Transcript())
	if err != nil {
		t.Fatalf("SaveTranscript: %v", err)
	}
	if len(saved) != 0 || len(s.Transcript()) != 0 {
		t.Fatalf("message on save should reset the cache, got %v", s.Transcript())
	}
}

func TestFetchTranscriptKeepsChaptersVerbatim(t *testing.T) {
	gw := newFakeGateway()
	s := startedSession(gw)
	gw.reply("GetTranscript", `{"transcripts":[{"b":2,"a":1},"plain",[1,2]]}`)

	got, err := s.FetchTranscript(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{`{"b":2,"a":1}`, `"plain"`, `[1,2]`}
	if len(got) != len(want) {
		t.Fatalf("got %d chapters", len(got))
	}
	for i := range want {
		if string(got[i]) != want[i] {
			t.Fatalf("chapter %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestFetchTranscriptFailuresLeaveCache(t *testing.T) {
	gw := newFakeGateway()
	s := startedSession(gw)
	gw.reply("GetTranscript", `{"transcripts":[{"title":"intro"}]}`).
		fail("GetTranscript", errNetwork).
		reply("GetTranscript", `{"message":null}`).
		reply("GetTranscript", `{"transcripts":{"not":"a list"}}`)
	ctx := context.Background()
	if _, err := s.FetchTranscript(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := s.FetchTranscript(ctx); !errors.Is(err, errNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := s.FetchTranscript(ctx); !errors.Is(err, services.ErrMalformedResponse) {
			t.Fatalf("expected malformed error, got %v", err)
		}
	}
	if len(s.Transcript()) != 1 {
		t.Fatalf("cache changed on failure: %v", s.Transcript())
	}
}

func TestSaveTranscriptRoundTrip(t *testing.T) {
	gw := newFakeGateway()
	s := startedSession(gw)
	payload := `[{"title":"intro","text":"hello"},{"title":"outro","text":"bye"}]`
	gw.reply("GetTranscript", `{"transcripts":`+payload+`}`).
		reply("PutTranscript", `{"transcripts":`+payload+`}`)
	ctx := context.Background()

	fetched, err := s.FetchTranscript(ctx)
	if err != nil {
		t.Fatal(err)
	}
	saved, err := s.SaveTranscript(ctx, fetched)
	if err != nil {
		t.Fatalf("SaveTranscript: %v", err)
	}
	if !gw.lastTranscript.Equal(fetched) {
		t.Fatalf("sent transcript differs from fetched one")
	}

	var echo pitch.Transcript
	if err := json.Unmarshal([]byte(payload), &echo); err != nil {
		t.Fatal(err)
	}
	if !saved.Equal(echo) || !s.Transcript().Equal(echo) {
		t.Fatalf("cache %v does not match echo %v", s.Transcript(), echo)
	}
}

func TestSaveTranscriptSentinelAndFailure(t *testing.T) {
	gw := newFakeGateway()
	s := startedSession(gw)
	gw.reply("GetTranscript", `{"transcripts":[{"title":"intro"}]}`).
		fail("PutTranscript", errNetwork).
		reply("PutTranscript", `{"message":"pitch has no transcript"}`)
	ctx := context.Background()
	if _, err := s.FetchTranscript(ctx); err != nil {
		t.Fatal(err)
	}
	edits := pitch.Transcript{json.RawMessage(`{"title":"edited"}`)}

	if _, err := s.SaveTranscript(ctx, edits); !errors.Is(err, errNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
	if got := s.Transcript(); len(got) != 1 || string(got[0]) != `{"title":"intro"}` {
		t.Fatalf("cache changed on transport failure: %v", got)
	}

	saved, err := s.SaveTranscript(ctx, edits)
	if err != nil {
		t.Fatalf("SaveTranscript: %v", err)
	}
	if len(saved) != 0 || len(s.Transcript()) != 0 {
		t.Fatalf("expected empty cache after sentinel, got %v", s.Transcript())
	}
}

func TestEditTranscriptIsolatesCaller(t *testing.T) {
	s := startedSession(newFakeGateway())
	edits := pitch.Transcript{json.RawMessage(`{"title":"a"}`)}
	s.EditTranscript(edits)
	edits[0][2] = 'X'

	got := s.Transcript()
	if string(got[0]) != `{"title":"a"}` {
		t.Fatalf("cache aliased caller slice: %s", got[0])
	}
	got[0][2] = 'Y'
	if string(s.Transcript()[0]) != `{"title":"a"}` {
		t.Fatal("Transcript() returned an aliased copy")
	}
}
