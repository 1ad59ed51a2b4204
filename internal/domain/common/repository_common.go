// internal/domain/common/repository_common.go
package common

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ValidationError carries a human-readable message that can be shown to the shopper as-is.
// Handlers map it to 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// Invalid builds a ValidationError.
func Invalid(format string, args ...any) error {
	if len(args) == 0 {
		return &ValidationError{Message: format}
	}
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err (or anything it wraps) is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// TimelineEntry is one status change on an order or ticket.
type TimelineEntry struct {
	Status    string    `json:"status" firestore:"status"`
	Timestamp time.Time `json:"timestamp" firestore:"timestamp"`
	Note      string    `json:"note,omitempty" firestore:"note,omitempty"`
}

// AppendTimeline returns a new slice with one entry appended.
// Existing entries are copied, never mutated.
func AppendTimeline(src []TimelineEntry, status string, at time.Time, note string) []TimelineEntry {
	out := make([]TimelineEntry, 0, len(src)+1)
	out = append(out, src...)
	out = append(out, TimelineEntry{
		Status:    strings.TrimSpace(status),
		Timestamp: at.UTC(),
		Note:      strings.TrimSpace(note),
	})
	return out
}

// CloneTimeline copies a timeline slice (nil -> empty).
func CloneTimeline(src []TimelineEntry) []TimelineEntry {
	out := make([]TimelineEntry, len(src))
	copy(out, src)
	return out
}
