package cloud

import (
	"errors"
	"fmt"

	"platformcli/internal/logging"

	"github.com/aws/smithy-go"
)

// Kind is the closed set of provider failures the commands react to
type Kind string

const (
	KindNotFound       Kind = "not-found"
	KindIncorrectState Kind = "incorrect-state"
	KindUnauthorized   Kind = "unauthorized"
	KindAlreadyExists  Kind = "already-exists"
	KindInvalidName    Kind = "invalid-name"
	KindNotEmpty       Kind = "not-empty"
	KindNoTags         Kind = "no-tags"
	KindOther          Kind = "other"
)

var codeKinds = map[string]Kind{
	"InvalidInstanceID.NotFound": KindNotFound,
	"NoSuchBucket":               KindNotFound,
	"NoSuchHostedZone":           KindNotFound,
	"NotFound":                   KindNotFound,
	"IncorrectInstanceState":     KindIncorrectState,
	"UnauthorizedOperation":      KindUnauthorized,
	"AccessDenied":               KindUnauthorized,
	"BucketAlreadyExists":        KindAlreadyExists,
	"BucketAlreadyOwnedByYou":    KindAlreadyExists,
	"HostedZoneAlreadyExists":    KindAlreadyExists,
	"InvalidBucketName":          KindInvalidName,
	"InvalidDomainName":          KindInvalidName,
	"BucketNotEmpty":             KindNotEmpty,
	"HostedZoneNotEmpty":         KindNotEmpty,
	"NoSuchTagSet":               KindNoTags,
}

// Error is a provider failure translated at the client boundary
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Classify converts provider API errors into *Error. Errors that did not come
// from the provider API (transport, credentials, local I/O) are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var classified *Error
	if errors.As(err, &classified) {
		return err
	}
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	kind, ok := codeKinds[apiErr.ErrorCode()]
	if !ok {
		kind = KindOther
	}
	return &Error{
		Kind:    kind,
		Code:    apiErr.ErrorCode(),
		Message: apiErr.ErrorMessage(),
		Err:     err,
	}
}

// KindOf reports the provider failure kind of err, or "" when err is not a provider error
func KindOf(err error) Kind {
	var classified *Error
	if errors.As(Classify(err), &classified) {
		return classified.Kind
	}
	return ""
}

// Failure carries the operator-facing message for a failed command together with its cause
type Failure struct {
	Message string
	Err     error
}

func (f *Failure) Error() string {
	return f.Message
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Failf builds a Failure around err
func Failf(err error, format string, args ...any) error {
	return &Failure{Message: fmt.Sprintf(format, args...), Err: err}
}

// Unexpected reports an error no command-specific message covers.
// Provider errors are prefixed "Error:", anything else "Unexpected error:".
func Unexpected(err error) error {
	err = Classify(err)
	if KindOf(err) != "" {
		return Failf(err, "Error: %v", err)
	}
	return Failf(err, "Unexpected error: %v", err)
}

// ProviderMessage returns the message of a provider failure, cut to a loggable size.
// Errors that did not come from the provider API contribute their full text.
func ProviderMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return logging.Truncate(apiErr.ErrorMessage())
	}
	return logging.Truncate(err.Error())
}
