package cognito

import (
	"fmt"
	"strings"
	"time"
)

// Config holds Cognito user pool settings.
type Config struct {
	// Region is the AWS region hosting the user pool (e.g. "us-east-1").
	Region string

	// UserPoolID identifies the pool (e.g. "us-east-1_Abc123").
	UserPoolID string

	// ClientID is the app client the mobile app authenticates with.
	ClientID string

	// Issuer overrides the default issuer URL (optional).
	// Default: "https://cognito-idp.{Region}.amazonaws.com/{UserPoolID}".
	Issuer string

	// JWKSRefreshInterval is how often the token validator refreshes the
	// pool's key set. Default: 1 hour.
	JWKSRefreshInterval time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig(region, userPoolID, clientID string) Config {
	return Config{
		Region:              region,
		UserPoolID:          userPoolID,
		ClientID:            clientID,
		JWKSRefreshInterval: time.Hour,
	}
}

func (c Config) issuerURL() string {
	if c.Issuer != "" {
		return strings.TrimSuffix(strings.TrimSpace(c.Issuer), "/")
	}

	region := strings.TrimSpace(c.Region)
	poolID := strings.TrimSpace(c.UserPoolID)
	if region == "" || poolID == "" {
		return ""
	}

	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", region, poolID)
}

func (c Config) jwksURL() string {
	issuer := c.issuerURL()
	if issuer == "" {
		return ""
	}
	return issuer + "/.well-known/jwks.json"
}
