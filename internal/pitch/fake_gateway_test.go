package pitch_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"pitchctl/internal/pitch"
)

type gatewayCall struct {
	Method string
	Args   []string
}

type gatewayReply struct {
	body string
	err  error
}

// fakeGateway replays queued replies per method and records every call.
type fakeGateway struct {
	calls   []gatewayCall
	replies map[string][]gatewayReply
	// lastTranscript holds the transcript passed to the most recent PutTranscript.
	lastTranscript pitch.Transcript
	lastUpload     string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{replies: make(map[string][]gatewayReply)}
}

func (f *fakeGateway) reply(method, body string) *fakeGateway {
	f.replies[method] = append(f.replies[method], gatewayReply{body: body})
	return f
}

func (f *fakeGateway) fail(method string, err error) *fakeGateway {
	f.replies[method] = append(f.replies[method], gatewayReply{err: err})
	return f
}

func (f *fakeGateway) next(method string, args ...string) (pitch.Body, error) {
	f.calls = append(f.calls, gatewayCall{Method: method, Args: args})
	queue := f.replies[method]
	if len(queue) == 0 {
		return nil, fmt.Errorf("fake gateway: unexpected call %s", method)
	}
	r := queue[0]
	f.replies[method] = queue[1:]
	if r.err != nil {
		return nil, r.err
	}
	return pitch.DecodeBody([]byte(r.body))
}

func (f *fakeGateway) UploadMaster(_ context.Context, upload pitch.Upload) (pitch.Body, error) {
	data, _ := io.ReadAll(upload.Content)
	f.lastUpload = string(data)
	return f.next("UploadMaster", upload.Filename)
}

func (f *fakeGateway) UploadReferenceDoc(_ context.Context, pitchID string, upload pitch.Upload) (pitch.Body, error) {
	return f.next("UploadReferenceDoc", pitchID, upload.Filename)
}

func (f *fakeGateway) ResumeTranscription(_ context.Context, pitchID string) (pitch.Body, error) {
	return f.next("ResumeTranscription", pitchID)
}

func (f *fakeGateway) TranscriptionStatus(_ context.Context, pitchID string) (pitch.Body, error) {
	return f.next("TranscriptionStatus", pitchID)
}

func (f *fakeGateway) TaskProgress(_ context.Context, taskID string) (pitch.Body, error) {
	return f.next("TaskProgress", taskID)
}

func (f *fakeGateway) SynthesisStatus(_ context.Context, pitchID, taskID string) (pitch.Body, error) {
	return f.next("SynthesisStatus", pitchID, taskID)
}

func (f *fakeGateway) GetTranscript(_ context.Context, pitchID string) (pitch.Body, error) {
	return f.next("GetTranscript", pitchID)
}

func (f *fakeGateway) PutTranscript(_ context.Context, pitchID string, transcript pitch.Transcript) (pitch.Body, error) {
	f.lastTranscript = transcript.Clone()
	return f.next("PutTranscript", pitchID)
}

func (f *fakeGateway) TriggerSynthesis(_ context.Context, pitchID string) (pitch.Body, error) {
	return f.next("TriggerSynthesis", pitchID)
}

func (f *fakeGateway) ListDocuments(_ context.Context, pitchID string) (pitch.Body, error) {
	return f.next("ListDocuments", pitchID)
}

func (f *fakeGateway) DeleteDocument(_ context.Context, pitchID, docID string) (pitch.Body, error) {
	return f.next("DeleteDocument", pitchID, docID)
}

func (f *fakeGateway) Converse(_ context.Context, pitchID, query string) (pitch.Body, error) {
	return f.next("Converse", pitchID, query)
}

var errNetwork = errors.New("connection reset by peer")

const testBase = "http://backend.test"

func newSession(gw *fakeGateway) *pitch.Session {
	return pitch.New(gw, pitch.NewLocator(testBase), nil)
}

// startedSession returns a session holding pitch p1 with transcription task t1.
func startedSession(gw *fakeGateway) *pitch.Session {
	gw.reply("UploadMaster", `{"pitch_id":"p1","task_id":"t1"}`)
	s := newSession(gw)
	if _, err := s.StartPitch(context.Background(), masterUpload()); err != nil {
		panic(err)
	}
	gw.calls = nil
	return s
}

func masterUpload() pitch.Upload {
	return pitch.Upload{Filename: "deck.pdf", Content: strings.NewReader("%PDF-1.7")}
}
