package gateway

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"golang.org/x/text/unicode/norm"

	"pitchctl/internal/pitch"
	"pitchctl/internal/services"
)

const fallbackFilename = "upload"

// normalizeFilename strips directories and composes the name to NFC so the
// backend sees one spelling regardless of the uploading filesystem.
func normalizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallbackFilename
	}
	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	if base == "." || base == "/" {
		return fallbackFilename
	}
	return norm.NFC.String(base)
}

func multipartRequest(upload pitch.Upload, pitchID string, segments ...string) (request, error) {
	if upload.Content == nil {
		return request{}, services.Wrap(services.ErrValidation, "gateway", "build upload", "upload has no content", nil)
	}
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if pitchID = strings.TrimSpace(pitchID); pitchID != "" {
		if err := writer.WriteField("pitch_id", pitchID); err != nil {
			return request{}, fmt.Errorf("gateway: write pitch_id field: %w", err)
		}
	}
	for _, keyword := range upload.Keywords {
		if keyword = strings.TrimSpace(keyword); keyword == "" {
			continue
		}
		if err := writer.WriteField("keywords", keyword); err != nil {
			return request{}, fmt.Errorf("gateway: write keywords field: %w", err)
		}
	}

	field, err := writer.CreateFormFile("file", normalizeFilename(upload.Filename))
	if err != nil {
		return request{}, fmt.Errorf("gateway: create file field: %w", err)
	}
	if _, err := io.Copy(field, upload.Content); err != nil {
		return request{}, services.Wrap(services.ErrValidation, "gateway", "build upload", "read upload content", err)
	}
	if err := writer.Close(); err != nil {
		return request{}, fmt.Errorf("gateway: close multipart writer: %w", err)
	}
	return request{
		method:      http.MethodPost,
		segments:    segments,
		body:        body.Bytes(),
		contentType: writer.FormDataContentType(),
		upload:      true,
	}, nil
}
