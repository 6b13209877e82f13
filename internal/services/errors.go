package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrPrecondition      = errors.New("precondition failed")
	ErrTransport         = errors.New("transport failure")
	ErrUnmappedStatus    = errors.New("unmapped status code")
	ErrNoData            = errors.New("server reported no data")
	ErrMalformedResponse = errors.New("malformed response")
	ErrValidation        = errors.New("validation error")
	ErrConfiguration     = errors.New("configuration error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransport
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Hint maps an error to a short operator-facing suggestion for CLI output.
func Hint(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPrecondition):
		return "no active pitch; run `pitchctl upload <file>` first"
	case errors.Is(err, ErrUnmappedStatus):
		return "backend reported a status this client does not know; check backend version"
	case errors.Is(err, ErrNoData):
		return "backend has nothing to return yet; retry later"
	case errors.Is(err, ErrMalformedResponse):
		return "backend response did not match the expected shape"
	case errors.Is(err, ErrConfiguration):
		return "check the config file (`pitchctl config show`)"
	case errors.Is(err, ErrValidation):
		return "check the command arguments"
	case errors.Is(err, ErrTransport):
		return "backend unreachable or returned an error; retry or check backend.base_url"
	default:
		return ""
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
