package auth

import "time"

// ExpiryMargin is how long before its real expiry a credential is treated as
// expired, so a request never goes out with a token that lapses in flight.
const ExpiryMargin = 30 * time.Second

// Credential is a bearer token issued by the token endpoint.
type Credential struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

// NewCredential builds a credential that expires expiresIn seconds after now.
func NewCredential(accessToken, tokenType string, expiresIn int64, now time.Time) Credential {
	return Credential{
		AccessToken: accessToken,
		TokenType:   tokenType,
		ExpiresAt:   now.Add(time.Duration(expiresIn) * time.Second),
	}
}

// NearExpiry reports whether the credential is within ExpiryMargin of its
// expiry (or past it) at the given instant.
func (c Credential) NearExpiry(now time.Time) bool {
	return !now.Add(ExpiryMargin).Before(c.ExpiresAt)
}

// HeaderValue is the exact Authorization header value, "{type} {token}".
func (c Credential) HeaderValue() string {
	return c.TokenType + " " + c.AccessToken
}
