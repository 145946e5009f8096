package session

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Credentials is the durable token record for the current session.
// Either all four fields are present and non-empty, or the record
// does not exist.
type Credentials struct {
	AccessToken  string `json:"access_token,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	SubjectID    string `json:"sub,omitempty"`
}

// Validate enforces the all-or-nothing invariant on the record.
func (c Credentials) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.AccessToken, validation.Required),
		validation.Field(&c.IDToken, validation.Required),
		validation.Field(&c.RefreshToken, validation.Required),
		validation.Field(&c.SubjectID, validation.Required),
	)
}

// SubjectUUID parses the provider-issued subject identifier.
func (c Credentials) SubjectUUID() (uuid.UUID, error) {
	return uuid.Parse(c.SubjectID)
}

// UserAttributes is the read-only identity projection resolved after a
// successful sign-in. Mutations go through the profile-update path, not
// this package.
type UserAttributes struct {
	SubjectID string  `json:"sub,omitempty"`
	Email     string  `json:"email,omitempty"`
	FirstName string  `json:"first_name,omitempty"`
	LastName  string  `json:"last_name,omitempty"`
	Handicap  float64 `json:"handicap,omitempty"`
}

// SignInStep names the provider's "next step" after a sign-in attempt.
type SignInStep string

const (
	SignInStepDone                SignInStep = "DONE"
	SignInStepConfirmSignUp       SignInStep = "CONFIRM_SIGN_UP"
	SignInStepNewPasswordRequired SignInStep = "NEW_PASSWORD_REQUIRED"
)

// SignInResult carries either completed credentials or the step the
// caller must complete before a session can exist.
type SignInResult struct {
	Step        SignInStep
	Credentials *Credentials
}

// SignUpResult reports whether the new account still needs the email
// confirmation step. Delivery is the provider's masked destination hint.
type SignUpResult struct {
	ConfirmationRequired bool
	Delivery             string
}

// Provider is the seam to the remote identity provider. Implementations
// are stateless adapters: one round trip per call, no retries, and all
// provider-specific error codes normalized into the ErrorKind taxonomy
// before returning.
type Provider interface {
	SignUp(ctx context.Context, payload SignUpPayload) (SignUpResult, error)
	ConfirmSignUp(ctx context.Context, username, code string) error
	ResendCode(ctx context.Context, username string) error
	SignIn(ctx context.Context, username, password string) (SignInResult, error)
	SignOut(ctx context.Context, accessToken string) error
	ResetPassword(ctx context.Context, username string) error
	ConfirmResetPassword(ctx context.Context, username, newPassword, code string) error
	ChangePassword(ctx context.Context, accessToken, oldPassword, newPassword string) error
	DeleteAccount(ctx context.Context, accessToken string) error
	RefreshSession(ctx context.Context, refreshToken string) (*Credentials, error)
	FetchUser(ctx context.Context, accessToken string) (*UserAttributes, error)
}

// CredentialStore persists the current credential record. Save overwrites
// atomically, Load returns (nil, nil) when no record exists, and Clear is
// idempotent.
type CredentialStore interface {
	Save(ctx context.Context, creds Credentials) error
	Load(ctx context.Context) (*Credentials, error)
	Clear(ctx context.Context) error
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] SESSION "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] SESSION "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] SESSION "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] SESSION "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
