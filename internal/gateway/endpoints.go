package gateway

import (
	"context"
	"net/http"

	"pitchctl/internal/pitch"
)

// UploadMaster posts the master document that starts a pitch.
func (c *Client) UploadMaster(ctx context.Context, upload pitch.Upload) (pitch.Body, error) {
	req, err := multipartRequest(upload, "", "upload_master")
	if err != nil {
		return nil, err
	}
	return c.do(ctx, req)
}

// UploadReferenceDoc posts a supporting document, tagged with pitchID when set.
func (c *Client) UploadReferenceDoc(ctx context.Context, pitchID string, upload pitch.Upload) (pitch.Body, error) {
	req, err := multipartRequest(upload, pitchID, "reference_doc")
	if err != nil {
		return nil, err
	}
	return c.do(ctx, req)
}

func (c *Client) ResumeTranscription(ctx context.Context, pitchID string) (pitch.Body, error) {
	return c.do(ctx, request{method: http.MethodPost, segments: []string{pitchID, "resume_transcribe"}})
}

// TranscriptionStatus uses the backend's own spelling of the route.
func (c *Client) TranscriptionStatus(ctx context.Context, pitchID string) (pitch.Body, error) {
	return c.do(ctx, request{method: http.MethodGet, segments: []string{pitchID, "transcibe_status"}})
}

func (c *Client) TaskProgress(ctx context.Context, taskID string) (pitch.Body, error) {
	return c.do(ctx, request{method: http.MethodGet, segments: []string{"tasks", taskID}})
}

func (c *Client) SynthesisStatus(ctx context.Context, pitchID, taskID string) (pitch.Body, error) {
	return c.do(ctx, request{method: http.MethodGet, segments: []string{pitchID, "tts_status", taskID}})
}

func (c *Client) GetTranscript(ctx context.Context, pitchID string) (pitch.Body, error) {
	return c.do(ctx, request{method: http.MethodGet, segments: []string{pitchID, "transcript"}})
}

// PutTranscript replaces the server transcript with {"transcripts": transcript}.
func (c *Client) PutTranscript(ctx context.Context, pitchID string, transcript pitch.Transcript) (pitch.Body, error) {
	if transcript == nil {
		transcript = pitch.Transcript{}
	}
	req, err := jsonRequest(http.MethodPut, map[string]pitch.Transcript{"transcripts": transcript}, pitchID, "transcript")
	if err != nil {
		return nil, err
	}
	return c.do(ctx, req)
}

func (c *Client) TriggerSynthesis(ctx context.Context, pitchID string) (pitch.Body, error) {
	return c.do(ctx, request{method: http.MethodPost, segments: []string{pitchID, "tts"}})
}

func (c *Client) ListDocuments(ctx context.Context, pitchID string) (pitch.Body, error) {
	return c.do(ctx, request{method: http.MethodGet, segments: []string{pitchID, "reference_doc", ""}})
}

func (c *Client) DeleteDocument(ctx context.Context, pitchID, docID string) (pitch.Body, error) {
	return c.do(ctx, request{method: http.MethodDelete, segments: []string{pitchID, "reference_doc", docID}})
}

func (c *Client) Converse(ctx context.Context, pitchID, query string) (pitch.Body, error) {
	req, err := jsonRequest(http.MethodPost, map[string]string{"query": query}, pitchID, "conversation")
	if err != nil {
		return nil, err
	}
	return c.do(ctx, req)
}
