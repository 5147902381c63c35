// ABOUTME: Rejection taxonomy for attachment insertion
// ABOUTME: RejectError carries the user-visible reason and unwraps to a sentinel

package media

import (
	"errors"
	"fmt"

	"github.com/mauromedda/msgcomposer/pkg/composer/document"
)

var (
	ErrNotMounted    = errors.New("editable root is not mounted")
	ErrKindForbidden = errors.New("attachment kind not allowed in this conversation")
	ErrLimitReached  = errors.New("attachment limit reached")
	ErrTooLarge      = errors.New("file too large")
	ErrMetadata      = errors.New("metadata load failed")
	// ErrDetached is returned when a probe result arrives for a node that has
	// since been removed. The result is dropped.
	ErrDetached = errors.New("attachment node no longer attached")
)

// RejectError is a precondition or resource rejection with a reason fit for
// the user.
type RejectError struct {
	Kind   document.AttachmentKind
	Reason string
	Err    error
}

func (e *RejectError) Error() string {
	return fmt.Sprintf("%s rejected: %s", e.Kind, e.Reason)
}

func (e *RejectError) Unwrap() error { return e.Err }

func reject(kind document.AttachmentKind, sentinel error, format string, args ...any) *RejectError {
	return &RejectError{Kind: kind, Reason: fmt.Sprintf(format, args...), Err: sentinel}
}

// noun returns the singular and plural label of a kind.
func noun(k document.AttachmentKind) (string, string) {
	switch k {
	case document.AttachImage:
		return "image", "images"
	case document.AttachVideo:
		return "video", "videos"
	default:
		return "file", "files"
	}
}
