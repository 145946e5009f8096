package session

import (
	goerrors "github.com/goliatone/go-errors"
)

// ErrorKind is the closed error taxonomy exposed to the host. Provider
// specific codes are mapped into it exactly once, at the Provider
// boundary; nothing above the state machine inspects provider strings.
type ErrorKind string

const (
	// KindValidation covers missing or malformed input detected locally,
	// before any network call.
	KindValidation ErrorKind = "VALIDATION"
	// KindNotConfirmed means the account exists but its email is unverified.
	KindNotConfirmed ErrorKind = "NOT_CONFIRMED"
	// KindInvalidCredentials is a bad username/password combination.
	KindInvalidCredentials ErrorKind = "INVALID_CREDENTIALS"
	KindUserNotFound       ErrorKind = "USER_NOT_FOUND"
	KindRateLimited        ErrorKind = "RATE_LIMITED"
	// KindPasswordChangeRequired is surfaced when the provider demands a
	// new password before completing sign-in; there is no automated step.
	KindPasswordChangeRequired ErrorKind = "PASSWORD_CHANGE_REQUIRED"
	// KindStorage is a local persistence failure.
	KindStorage ErrorKind = "STORAGE_ERROR"
	// KindProvider is the catch-all for unmapped provider and network
	// failures.
	KindProvider ErrorKind = "NETWORK_OR_PROVIDER_ERROR"
)

// Retryable reports whether retrying the same operation with the same
// input can reasonably succeed.
func (k ErrorKind) Retryable() bool {
	switch k {
	case KindRateLimited, KindProvider, KindStorage:
		return true
	default:
		return false
	}
}

// ErrNotAuthenticated is returned by operations that require a live
// session (change password, delete account) while signed out. Detected
// locally, so it carries the validation kind.
var ErrNotAuthenticated = goerrors.New("no authenticated session", goerrors.CategoryValidation).
	WithTextCode(string(KindValidation)).
	WithCode(goerrors.CodeBadRequest)

// ErrIncompleteCredentials is returned when the provider hands back a
// credential record that is missing one of the four required fields.
var ErrIncompleteCredentials = goerrors.New("incomplete credential record", goerrors.CategoryInternal).
	WithTextCode(string(KindProvider))

func kindCategory(kind ErrorKind) goerrors.Category {
	switch kind {
	case KindValidation:
		return goerrors.CategoryValidation
	case KindNotConfirmed, KindInvalidCredentials, KindPasswordChangeRequired:
		return goerrors.CategoryAuth
	case KindUserNotFound:
		return goerrors.CategoryNotFound
	case KindRateLimited:
		return goerrors.CategoryRateLimit
	case KindStorage:
		return goerrors.CategoryInternal
	default:
		return goerrors.CategoryOperation
	}
}

// NewKindError builds a rich error tagged with an ErrorKind text code.
func NewKindError(kind ErrorKind, message string) *goerrors.Error {
	return goerrors.New(message, kindCategory(kind)).WithTextCode(string(kind))
}

// WrapKind wraps an underlying error, tagging it with an ErrorKind.
// Adapters and stores use this at their boundary so the state machine
// only ever sees taxonomy kinds.
func WrapKind(err error, kind ErrorKind, message string) *goerrors.Error {
	return goerrors.Wrap(err, kindCategory(kind), message).WithTextCode(string(kind))
}

// KindOf extracts the ErrorKind from an error. Untagged errors fall
// through to the provider/network catch-all.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}

	var rich *goerrors.Error
	if goerrors.As(err, &rich) && rich.TextCode != "" {
		return ErrorKind(rich.TextCode)
	}

	return KindProvider
}

func failureFromError(err error) *Failure {
	if err == nil {
		return nil
	}

	kind := KindOf(err)
	message := err.Error()

	var rich *goerrors.Error
	if goerrors.As(err, &rich) && rich.Message != "" {
		message = rich.Message
	}

	return &Failure{
		Kind:      kind,
		Message:   message,
		Retryable: kind.Retryable(),
	}
}
