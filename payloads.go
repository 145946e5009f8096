package session

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// SignUpPayload carries the registration form fields. The email doubles
// as the provider username. Handicap is numeric with no enforced range;
// range policy belongs to profile management, not this package.
type SignUpPayload struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Handicap  float64 `json:"handicap"`
}

func (p SignUpPayload) Validate() error {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(&p.FirstName, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.LastName, validation.Required, validation.Length(1, 200)),
	)
	if err != nil {
		return WrapKind(err, KindValidation, "invalid sign up payload")
	}
	return nil
}

type signInPayload struct {
	Username string
	Password string
}

func (p signInPayload) Validate() error {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.Username, validation.Required),
		validation.Field(&p.Password, validation.Required),
	)
	if err != nil {
		return WrapKind(err, KindValidation, "email and password are required")
	}
	return nil
}

type confirmSignUpPayload struct {
	Username string
	Code     string
}

func (p confirmSignUpPayload) Validate() error {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.Username, validation.Required),
		validation.Field(&p.Code, validation.Required),
	)
	if err != nil {
		return WrapKind(err, KindValidation, "username and confirmation code are required")
	}
	return nil
}

type confirmResetPayload struct {
	Username    string
	NewPassword string
	Code        string
}

func (p confirmResetPayload) Validate() error {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.Username, validation.Required),
		validation.Field(&p.NewPassword, validation.Required, validation.Length(8, 100)),
		validation.Field(&p.Code, validation.Required),
	)
	if err != nil {
		return WrapKind(err, KindValidation, "username, new password and code are required")
	}
	return nil
}

type changePasswordPayload struct {
	OldPassword string
	NewPassword string
}

func (p changePasswordPayload) Validate() error {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.OldPassword, validation.Required),
		validation.Field(&p.NewPassword, validation.Required, validation.Length(8, 100)),
	)
	if err != nil {
		return WrapKind(err, KindValidation, "old and new password are required")
	}
	return nil
}

func validateUsername(username string) error {
	if err := validation.Validate(username, validation.Required); err != nil {
		return WrapKind(err, KindValidation, "username is required")
	}
	return nil
}
