package feed

import (
	"fmt"
)

// ResolutionError reports that a required joined reference for one content
// item could not be resolved. It is fatal for that item and non-fatal for
// the containing batch.
type ResolutionError struct {
	ContentID string
	Field     string
	Err       error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("feed: failed resolving %s for %s: %v", e.Field, e.ContentID, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// DataIntegrityError reports a persisted value that violates an expected
// enum or shape. It signals corruption and is never retried.
type DataIntegrityError struct {
	ContentID string
	Detail    string
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("feed: data integrity violation in %s: %s", e.ContentID, e.Detail)
}

// ItemFailure records one content item that was dropped from a batch,
// surfaced to the caller alongside the items that did resolve.
type ItemFailure struct {
	PostID string `json:"post_id"`
	Err    error  `json:"-"`
}

// Reason returns the failure description for API surfaces.
func (f ItemFailure) Reason() string {
	if f.Err == nil {
		return ""
	}
	return f.Err.Error()
}
