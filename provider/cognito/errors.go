package cognito

import (
	"errors"

	"github.com/aws/smithy-go"

	"github.com/Crzzy98/BTG"
)

// Cognito error codes this adapter understands. Anything else falls
// through to the network/provider catch-all.
const (
	codeUserNotConfirmed      = "UserNotConfirmedException"
	codeNotAuthorized         = "NotAuthorizedException"
	codeUserNotFound          = "UserNotFoundException"
	codeInvalidParameter      = "InvalidParameterException"
	codeInvalidPassword       = "InvalidPasswordException"
	codeCodeMismatch          = "CodeMismatchException"
	codeExpiredCode           = "ExpiredCodeException"
	codeTooManyRequests       = "TooManyRequestsException"
	codeLimitExceeded         = "LimitExceededException"
	codeTooManyFailedAttempts = "TooManyFailedAttemptsException"
	codePasswordResetRequired = "PasswordResetRequiredException"
	codeUsernameExists        = "UsernameExistsException"
	codeAliasExists           = "AliasExistsException"
)

// normalizeError maps a Cognito SDK failure into the session taxonomy.
// This is the single point where provider-specific codes are inspected.
func normalizeError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return session.WrapKind(err, session.KindProvider, "identity provider request failed")
	}

	switch apiErr.ErrorCode() {
	case codeUserNotConfirmed:
		return session.WrapKind(err, session.KindNotConfirmed, "please confirm your account")
	case codeNotAuthorized:
		return session.WrapKind(err, session.KindInvalidCredentials, "incorrect username or password")
	case codeUserNotFound:
		return session.WrapKind(err, session.KindUserNotFound, "user does not exist")
	case codeInvalidParameter, codeInvalidPassword:
		return session.WrapKind(err, session.KindValidation, "invalid username or password format")
	case codeCodeMismatch:
		return session.WrapKind(err, session.KindValidation, "incorrect confirmation code")
	case codeExpiredCode:
		return session.WrapKind(err, session.KindValidation, "confirmation code has expired")
	case codeUsernameExists, codeAliasExists:
		return session.WrapKind(err, session.KindValidation, "an account with this email already exists")
	case codeTooManyRequests, codeLimitExceeded, codeTooManyFailedAttempts:
		return session.WrapKind(err, session.KindRateLimited, "too many attempts, please try again later")
	case codePasswordResetRequired:
		return session.WrapKind(err, session.KindPasswordChangeRequired, "password reset required")
	default:
		return session.WrapKind(err, session.KindProvider, "identity provider error")
	}
}

func isErrorCode(err error, code string) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == code
}
