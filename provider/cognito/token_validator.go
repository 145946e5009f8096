package cognito

import (
	stderrors "errors"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/Crzzy98/BTG"
)

// TokenValidator verifies Cognito-issued JWTs against the user pool's
// JWKS. The key set refreshes in the background for the lifetime of the
// validator; call Close when done.
type TokenValidator struct {
	config  Config
	jwks    *keyfunc.JWKS
	keyFunc jwt.Keyfunc
	parser  *jwt.Parser
}

// NewTokenValidator fetches the pool's JWKS and starts background
// refresh.
func NewTokenValidator(cfg Config) (*TokenValidator, error) {
	jwksURL := cfg.jwksURL()
	if jwksURL == "" {
		return nil, fmt.Errorf("cognito: region and user pool id are required")
	}

	interval := cfg.JWKSRefreshInterval
	if interval == 0 {
		interval = time.Hour
	}

	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		RefreshInterval:   interval,
		RefreshRateLimit:  time.Minute * 5,
		RefreshTimeout:    time.Second * 10,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, fmt.Errorf("cognito: failed to fetch jwks: %w", err)
	}

	v := newValidator(cfg, jwks.Keyfunc)
	v.jwks = jwks
	return v, nil
}

func newValidator(cfg Config, kf jwt.Keyfunc) *TokenValidator {
	return &TokenValidator{
		config:  cfg,
		keyFunc: kf,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{"RS256"}),
			jwt.WithIssuer(cfg.issuerURL()),
			jwt.WithExpirationRequired(),
		),
	}
}

// Validate parses and verifies a token, returning its claims.
func (v *TokenValidator) Validate(tokenString string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, v.keyFunc)
	if err != nil {
		return nil, normalizeTokenError(err)
	}
	if !token.Valid {
		return nil, session.NewKindError(session.KindInvalidCredentials, "invalid token")
	}

	// ID tokens carry the app client in aud; access tokens in client_id.
	if v.config.ClientID != "" && !claimsMatchClient(claims, v.config.ClientID) {
		return nil, session.NewKindError(session.KindInvalidCredentials, "token issued for another client")
	}

	return claims, nil
}

// Subject validates the token and returns its subject claim.
func (v *TokenValidator) Subject(tokenString string) (string, error) {
	claims, err := v.Validate(tokenString)
	if err != nil {
		return "", err
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", session.NewKindError(session.KindInvalidCredentials, "token missing subject")
	}

	return sub, nil
}

// Close stops the background JWKS refresh.
func (v *TokenValidator) Close() {
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}

func claimsMatchClient(claims jwt.MapClaims, clientID string) bool {
	if aud, err := claims.GetAudience(); err == nil {
		for _, a := range aud {
			if a == clientID {
				return true
			}
		}
	}

	if raw, ok := claims["client_id"]; ok {
		if id, ok := raw.(string); ok && id == clientID {
			return true
		}
	}

	return false
}

func normalizeTokenError(err error) error {
	switch {
	case stderrors.Is(err, jwt.ErrTokenExpired):
		return session.WrapKind(err, session.KindInvalidCredentials, "token is expired")
	case stderrors.Is(err, jwt.ErrTokenMalformed):
		return session.WrapKind(err, session.KindInvalidCredentials, "token is malformed")
	default:
		return session.WrapKind(err, session.KindInvalidCredentials, "token validation failed")
	}
}
