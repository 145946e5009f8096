package cognito

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/golang-jwt/jwt/v5"

	"github.com/Crzzy98/BTG"
)

// Custom user pool attributes carried on sign-up.
const (
	attrEmail     = "email"
	attrFirstName = "custom:first"
	attrLastName  = "custom:last"
	attrHandicap  = "custom:handicap"
	attrSubject   = "sub"
)

// API is the slice of the Cognito identity provider SDK this adapter
// uses. Tests substitute a mock; production wraps the real client.
type API interface {
	SignUp(ctx context.Context, params *cip.SignUpInput, optFns ...func(*cip.Options)) (*cip.SignUpOutput, error)
	ConfirmSignUp(ctx context.Context, params *cip.ConfirmSignUpInput, optFns ...func(*cip.Options)) (*cip.ConfirmSignUpOutput, error)
	ResendConfirmationCode(ctx context.Context, params *cip.ResendConfirmationCodeInput, optFns ...func(*cip.Options)) (*cip.ResendConfirmationCodeOutput, error)
	InitiateAuth(ctx context.Context, params *cip.InitiateAuthInput, optFns ...func(*cip.Options)) (*cip.InitiateAuthOutput, error)
	ForgotPassword(ctx context.Context, params *cip.ForgotPasswordInput, optFns ...func(*cip.Options)) (*cip.ForgotPasswordOutput, error)
	ConfirmForgotPassword(ctx context.Context, params *cip.ConfirmForgotPasswordInput, optFns ...func(*cip.Options)) (*cip.ConfirmForgotPasswordOutput, error)
	ChangePassword(ctx context.Context, params *cip.ChangePasswordInput, optFns ...func(*cip.Options)) (*cip.ChangePasswordOutput, error)
	DeleteUser(ctx context.Context, params *cip.DeleteUserInput, optFns ...func(*cip.Options)) (*cip.DeleteUserOutput, error)
	GlobalSignOut(ctx context.Context, params *cip.GlobalSignOutInput, optFns ...func(*cip.Options)) (*cip.GlobalSignOutOutput, error)
	GetUser(ctx context.Context, params *cip.GetUserInput, optFns ...func(*cip.Options)) (*cip.GetUserOutput, error)
}

// Client implements session.Provider backed by a Cognito user pool.
type Client struct {
	config    Config
	api       API
	validator *TokenValidator
}

var _ session.Provider = (*Client)(nil)

// New creates a Cognito-backed provider using the ambient AWS
// configuration chain.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Region) == "" {
		return nil, fmt.Errorf("cognito: region is required")
	}
	if strings.TrimSpace(cfg.ClientID) == "" {
		return nil, fmt.Errorf("cognito: client id is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("cognito: failed to load aws config: %w", err)
	}

	return NewWithAPI(cfg, cip.NewFromConfig(awsCfg)), nil
}

// NewWithAPI creates a provider over an existing API implementation.
func NewWithAPI(cfg Config, api API) *Client {
	return &Client{config: cfg, api: api}
}

// WithTokenValidator verifies ID tokens against the pool's JWKS instead
// of trusting their payload unverified.
func (c *Client) WithTokenValidator(v *TokenValidator) *Client {
	c.validator = v
	return c
}

// SignUp implements session.Provider.
func (c *Client) SignUp(ctx context.Context, payload session.SignUpPayload) (session.SignUpResult, error) {
	out, err := c.api.SignUp(ctx, &cip.SignUpInput{
		ClientId: aws.String(c.config.ClientID),
		Username: aws.String(payload.Email),
		Password: aws.String(payload.Password),
		UserAttributes: []types.AttributeType{
			{Name: aws.String(attrEmail), Value: aws.String(payload.Email)},
			{Name: aws.String(attrFirstName), Value: aws.String(payload.FirstName)},
			{Name: aws.String(attrLastName), Value: aws.String(payload.LastName)},
			{Name: aws.String(attrHandicap), Value: aws.String(formatHandicap(payload.Handicap))},
		},
	})
	if err != nil {
		return session.SignUpResult{}, normalizeError(err)
	}

	result := session.SignUpResult{ConfirmationRequired: !out.UserConfirmed}
	if out.CodeDeliveryDetails != nil {
		result.Delivery = aws.ToString(out.CodeDeliveryDetails.Destination)
	}

	return result, nil
}

// ConfirmSignUp implements session.Provider.
func (c *Client) ConfirmSignUp(ctx context.Context, username, code string) error {
	_, err := c.api.ConfirmSignUp(ctx, &cip.ConfirmSignUpInput{
		ClientId:         aws.String(c.config.ClientID),
		Username:         aws.String(username),
		ConfirmationCode: aws.String(code),
	})
	return normalizeError(err)
}

// ResendCode implements session.Provider.
func (c *Client) ResendCode(ctx context.Context, username string) error {
	_, err := c.api.ResendConfirmationCode(ctx, &cip.ResendConfirmationCodeInput{
		ClientId: aws.String(c.config.ClientID),
		Username: aws.String(username),
	})
	return normalizeError(err)
}

// SignIn implements session.Provider. An unconfirmed account and the
// new-password challenge come back as next steps, not errors; every
// other failure is normalized into the taxonomy.
func (c *Client) SignIn(ctx context.Context, username, password string) (session.SignInResult, error) {
	out, err := c.api.InitiateAuth(ctx, &cip.InitiateAuthInput{
		ClientId: aws.String(c.config.ClientID),
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		AuthParameters: map[string]string{
			"USERNAME": username,
			"PASSWORD": password,
		},
	})
	if err != nil {
		if isErrorCode(err, codeUserNotConfirmed) {
			return session.SignInResult{Step: session.SignInStepConfirmSignUp}, nil
		}
		return session.SignInResult{}, normalizeError(err)
	}

	if out.ChallengeName == types.ChallengeNameTypeNewPasswordRequired {
		return session.SignInResult{Step: session.SignInStepNewPasswordRequired}, nil
	}

	if out.AuthenticationResult == nil {
		return session.SignInResult{}, session.NewKindError(session.KindProvider,
			fmt.Sprintf("unexpected auth challenge: %s", out.ChallengeName))
	}

	creds, err := c.credentialsFromResult(out.AuthenticationResult)
	if err != nil {
		return session.SignInResult{}, err
	}

	return session.SignInResult{Step: session.SignInStepDone, Credentials: creds}, nil
}

// SignOut implements session.Provider; it revokes every token issued to
// the user.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	_, err := c.api.GlobalSignOut(ctx, &cip.GlobalSignOutInput{
		AccessToken: aws.String(accessToken),
	})
	return normalizeError(err)
}

// ResetPassword implements session.Provider.
func (c *Client) ResetPassword(ctx context.Context, username string) error {
	_, err := c.api.ForgotPassword(ctx, &cip.ForgotPasswordInput{
		ClientId: aws.String(c.config.ClientID),
		Username: aws.String(username),
	})
	return normalizeError(err)
}

// ConfirmResetPassword implements session.Provider.
func (c *Client) ConfirmResetPassword(ctx context.Context, username, newPassword, code string) error {
	_, err := c.api.ConfirmForgotPassword(ctx, &cip.ConfirmForgotPasswordInput{
		ClientId:         aws.String(c.config.ClientID),
		Username:         aws.String(username),
		Password:         aws.String(newPassword),
		ConfirmationCode: aws.String(code),
	})
	return normalizeError(err)
}

// ChangePassword implements session.Provider.
func (c *Client) ChangePassword(ctx context.Context, accessToken, oldPassword, newPassword string) error {
	_, err := c.api.ChangePassword(ctx, &cip.ChangePasswordInput{
		AccessToken:      aws.String(accessToken),
		PreviousPassword: aws.String(oldPassword),
		ProposedPassword: aws.String(newPassword),
	})
	return normalizeError(err)
}

// DeleteAccount implements session.Provider.
func (c *Client) DeleteAccount(ctx context.Context, accessToken string) error {
	_, err := c.api.DeleteUser(ctx, &cip.DeleteUserInput{
		AccessToken: aws.String(accessToken),
	})
	return normalizeError(err)
}

// RefreshSession implements session.Provider. Cognito does not rotate
// the refresh token, so the returned record leaves it empty for the
// caller to carry forward.
func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*session.Credentials, error) {
	out, err := c.api.InitiateAuth(ctx, &cip.InitiateAuthInput{
		ClientId: aws.String(c.config.ClientID),
		AuthFlow: types.AuthFlowTypeRefreshTokenAuth,
		AuthParameters: map[string]string{
			"REFRESH_TOKEN": refreshToken,
		},
	})
	if err != nil {
		return nil, normalizeError(err)
	}

	if out.AuthenticationResult == nil {
		return nil, session.NewKindError(session.KindProvider, "empty refresh result")
	}

	return c.credentialsFromResult(out.AuthenticationResult)
}

// FetchUser implements session.Provider.
func (c *Client) FetchUser(ctx context.Context, accessToken string) (*session.UserAttributes, error) {
	out, err := c.api.GetUser(ctx, &cip.GetUserInput{
		AccessToken: aws.String(accessToken),
	})
	if err != nil {
		return nil, normalizeError(err)
	}

	attrs := &session.UserAttributes{}
	for _, attr := range out.UserAttributes {
		switch aws.ToString(attr.Name) {
		case attrSubject:
			attrs.SubjectID = aws.ToString(attr.Value)
		case attrEmail:
			attrs.Email = aws.ToString(attr.Value)
		case attrFirstName:
			attrs.FirstName = aws.ToString(attr.Value)
		case attrLastName:
			attrs.LastName = aws.ToString(attr.Value)
		case attrHandicap:
			attrs.Handicap = parseHandicap(aws.ToString(attr.Value))
		}
	}

	return attrs, nil
}

func (c *Client) credentialsFromResult(result *types.AuthenticationResultType) (*session.Credentials, error) {
	creds := &session.Credentials{
		AccessToken:  aws.ToString(result.AccessToken),
		IDToken:      aws.ToString(result.IdToken),
		RefreshToken: aws.ToString(result.RefreshToken),
	}

	if creds.IDToken != "" {
		sub, err := c.subjectFromIDToken(creds.IDToken)
		if err != nil {
			return nil, err
		}
		creds.SubjectID = sub
	}

	return creds, nil
}

// subjectFromIDToken extracts the subject claim. With a validator
// configured the token signature and issuer are verified against the
// pool's JWKS first; otherwise the payload is parsed unverified, which
// is acceptable for tokens received directly over TLS from the pool.
func (c *Client) subjectFromIDToken(idToken string) (string, error) {
	if c.validator != nil {
		return c.validator.Subject(idToken)
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return "", session.WrapKind(err, session.KindProvider, "malformed id token")
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", session.NewKindError(session.KindProvider, "id token missing subject")
	}

	return sub, nil
}

func formatHandicap(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

func parseHandicap(raw string) float64 {
	if raw == "" {
		return 0
	}
	h, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return h
}
