package pitch

import (
	"fmt"

	"pitchctl/internal/services"
)

// UnmappedStatusError reports a backend status code outside a pipeline's
// stage table.
type UnmappedStatusError struct {
	Pipeline Pipeline
	Code     int
}

func (e *UnmappedStatusError) Error() string {
	return fmt.Sprintf("%s pipeline: unmapped status code %d", e.Pipeline, e.Code)
}

func (e *UnmappedStatusError) Unwrap() error {
	return services.ErrUnmappedStatus
}

// NoDataError reports a sentinel "nothing here" response. The local cache
// the operation would have changed is left as it was.
type NoDataError struct {
	Operation string
	Message   string
}

func (e *NoDataError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: server reported no data", e.Operation)
	}
	return fmt.Sprintf("%s: server reported no data: %s", e.Operation, e.Message)
}

func (e *NoDataError) Unwrap() error {
	return services.ErrNoData
}

func errNoPitch(operation string) error {
	return services.Wrap(services.ErrPrecondition, "pitch", operation, "no active pitch", nil)
}

func errMalformed(operation, message string) error {
	return services.Wrap(services.ErrMalformedResponse, "pitch", operation, message, nil)
}
