// internal/apperrors/apperrors.go
package apperrors

import (
	"errors"
	"fmt"
)

// Kind discriminates core failures so callers can branch on them without
// string matching. StorageUnavailable is the only kind a caller may
// retry; everything else is terminal for that call.
type Kind string

const (
	KindValidation           Kind = "validation_error"
	KindNotFound             Kind = "not_found"
	KindInvalidTransition    Kind = "invalid_transition"
	KindInsufficientStock    Kind = "insufficient_stock"
	KindOutOfStock           Kind = "out_of_stock"
	KindVendorNotApproved    Kind = "vendor_not_approved"
	KindDuplicateApplication Kind = "duplicate_application"
	KindUnauthorized         Kind = "unauthorized"
	KindStorageUnavailable   Kind = "storage_unavailable"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match two taxonomy errors by kind alone, so
// sentinel-style checks like errors.Is(err, apperrors.New(KindNotFound, ""))
// and IsKind below work through wrapped chains.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind to an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Storage wraps an unexpected database error as StorageUnavailable.
func Storage(err error) *Error {
	return &Error{Kind: KindStorageUnavailable, Message: "storage error", Err: err}
}

// KindOf extracts the kind from an error chain, or "" when the error does
// not carry one.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
