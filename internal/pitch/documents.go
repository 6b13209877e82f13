package pitch

import (
	"context"
	"encoding/json"
	"strings"

	"pitchctl/internal/logging"
	"pitchctl/internal/services"
)

// ReferenceDocument is a supporting file attached to a pitch. Raw holds the
// full server record.
type ReferenceDocument struct {
	ID       string          `json:"id"`
	Filename string          `json:"filename,omitempty"`
	Raw      json.RawMessage `json:"raw,omitempty"`
}

// ParseReferenceDocument decodes one server document record.
func ParseReferenceDocument(raw json.RawMessage) (ReferenceDocument, error) {
	body, err := DecodeBody(raw)
	if err != nil {
		return ReferenceDocument{}, err
	}
	id, ok := body.ID("id")
	if !ok {
		id, ok = body.ID("doc_id")
	}
	if !ok {
		return ReferenceDocument{}, errMalformed("parse document", "record has no id")
	}
	name, ok := body.String("filename")
	if !ok {
		name, _ = body.String("file_name")
	}
	return ReferenceDocument{
		ID:       id,
		Filename: name,
		Raw:      append(json.RawMessage(nil), raw...),
	}, nil
}

type documentSet struct {
	order []string
	byID  map[string]ReferenceDocument
}

func newDocumentSet() documentSet {
	return documentSet{byID: make(map[string]ReferenceDocument)}
}

// replace swaps the whole set. Duplicate ids keep their first position and
// the last record.
func (d *documentSet) replace(docs []ReferenceDocument) {
	next := newDocumentSet()
	for _, doc := range docs {
		if _, seen := next.byID[doc.ID]; !seen {
			next.order = append(next.order, doc.ID)
		}
		next.byID[doc.ID] = doc
	}
	*d = next
}

func (d *documentSet) remove(id string) bool {
	if _, ok := d.byID[id]; !ok {
		return false
	}
	delete(d.byID, id)
	for i, existing := range d.order {
		if existing == id {
			d.order = append(d.order[:i:i], d.order[i+1:]...)
			break
		}
	}
	return true
}

func (d *documentSet) list() []ReferenceDocument {
	out := make([]ReferenceDocument, 0, len(d.order))
	for _, id := range d.order {
		doc := d.byID[id]
		doc.Raw = append(json.RawMessage(nil), doc.Raw...)
		out = append(out, doc)
	}
	return out
}

// Documents returns the cached set in server order.
func (s *Session) Documents() []ReferenceDocument {
	return s.docs.list()
}

// ListDocuments refreshes the set from the backend. On a "nothing here"
// reply the set is kept, returned, and accompanied by a *NoDataError.
func (s *Session) ListDocuments(ctx context.Context) ([]ReferenceDocument, error) {
	const operation = "list documents"
	if s.state.PitchID == "" {
		return nil, errNoPitch(operation)
	}
	body, err := s.gateway.ListDocuments(ctx, s.state.PitchID)
	if err != nil {
		return nil, err
	}
	kind, msg := classify(body, "docs")
	switch kind {
	case outcomeSentinel:
		logging.WarnWithContext(s.log(ctx), "document list unavailable; keeping cached set", "documents_no_data",
			logging.String("message", msg),
			logging.Int("cached", len(s.docs.order)),
			logging.String(logging.FieldErrorHint, "upload a reference document or retry later"),
			logging.String(logging.FieldImpact, "document list may be stale"),
		)
		return s.docs.list(), &NoDataError{Operation: operation, Message: msg}
	case outcomeMalformed:
		return nil, errMalformed(operation, "response has neither docs nor message")
	}

	var records []json.RawMessage
	if raw := body["docs"]; !isJSONNull(raw) {
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, errMalformed(operation, "docs is not a list")
		}
	}
	docs := make([]ReferenceDocument, 0, len(records))
	for _, record := range records {
		doc, err := ParseReferenceDocument(record)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	s.docs.replace(docs)
	s.log(ctx).Debug("document set refreshed", logging.Int("count", len(s.docs.order)))
	return s.docs.list(), nil
}

// RemoveDocument deletes a document on the backend and drops it locally
// once the backend confirms.
func (s *Session) RemoveDocument(ctx context.Context, id string) error {
	const operation = "remove document"
	if s.state.PitchID == "" {
		return errNoPitch(operation)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return services.Wrap(services.ErrValidation, "pitch", operation, "document id is empty", nil)
	}
	body, err := s.gateway.DeleteDocument(ctx, s.state.PitchID, id)
	if err != nil {
		return err
	}
	if kind, msg := classify(body, ""); kind == outcomeSentinel {
		logging.WarnWithContext(s.log(ctx), "document delete not confirmed; keeping cached set", "documents_no_data",
			logging.String(logging.FieldDocumentID, id),
			logging.String("message", msg),
			logging.String(logging.FieldErrorHint, "refresh the document list"),
			logging.String(logging.FieldImpact, "document may still exist on the backend"),
		)
		return &NoDataError{Operation: operation, Message: msg}
	}
	removed := s.docs.remove(id)
	s.log(ctx).Info("document removed",
		logging.String(logging.FieldDocumentID, id),
		logging.Bool("was_cached", removed),
	)
	return nil
}

// UploadDocument attaches a reference document. The local set is not
// changed; call ListDocuments to pick up the new record.
func (s *Session) UploadDocument(ctx context.Context, upload Upload) (ReferenceDocument, error) {
	if upload.Content == nil {
		return ReferenceDocument{}, services.Wrap(services.ErrValidation, "pitch", "upload document", "upload has no content", nil)
	}
	body, err := s.gateway.UploadReferenceDoc(ctx, s.state.PitchID, upload)
	if err != nil {
		return ReferenceDocument{}, err
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return ReferenceDocument{}, errMalformed("upload document", err.Error())
	}
	doc, err := ParseReferenceDocument(raw)
	if err != nil {
		return ReferenceDocument{}, err
	}
	s.log(ctx).Info("reference document uploaded",
		logging.String(logging.FieldDocumentID, doc.ID),
		logging.String("filename", doc.Filename),
	)
	return doc, nil
}
