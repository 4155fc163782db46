// Package auth obtains and caches the bearer credential used by the field API.
//
// The Manager performs an OAuth2 client-credentials exchange against the
// token endpoint and keeps the result until it is within ExpiryMargin of
// expiring. The check, the fetch and the store happen under one mutex, so
// concurrent callers never issue overlapping token requests and always see
// either the cached credential or the one just fetched.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// GrantType is the OAuth2 grant used for every token request.
const GrantType = "client_credentials"

// maxTokenBody bounds how much of a token response is read.
const maxTokenBody = 1 << 20

var (
	// ErrInvalidCredentials is returned when the token endpoint answers 401.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrMalformedToken is returned when a token response cannot be decoded
	// into a usable credential.
	ErrMalformedToken = errors.New("malformed token response")

	// ErrTokenRequest is returned when the token endpoint cannot be reached.
	ErrTokenRequest = errors.New("token request failed")
)

// TokenError is an application-level rejection from the token endpoint,
// reported with the endpoint's own error code and description.
type TokenError struct {
	Code        string
	Description string
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

type tokenErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   *int64 `json:"expires_in"`
}

// Manager fetches and caches the API credential.
type Manager struct {
	tokenURL     string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	now          func() time.Time

	mu      sync.Mutex
	current *Credential
}

// NewManager creates a Manager for the given token endpoint. A nil httpClient
// uses http.DefaultClient.
func NewManager(tokenURL, clientID, clientSecret string, httpClient *http.Client) *Manager {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Manager{
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   httpClient,
		now:          time.Now,
	}
}

// HeaderValue returns the Authorization header value of a valid credential,
// fetching a new one if none is cached or the cached one is near expiry.
func (m *Manager) HeaderValue(ctx context.Context) (string, error) {
	cred, err := m.Credential(ctx)
	if err != nil {
		return "", err
	}
	return cred.HeaderValue(), nil
}

// Credential returns a valid credential, fetching one if needed.
func (m *Manager) Credential(ctx context.Context) (Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil && !m.current.NearExpiry(m.now()) {
		return *m.current, nil
	}

	cred, err := m.fetch(ctx)
	if err != nil {
		return Credential{}, err
	}
	m.current = &cred

	return cred, nil
}

// Invalidate drops the cached credential so the next call fetches a new one.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
}

// fetch performs the client-credentials exchange. Callers must hold m.mu.
func (m *Manager) fetch(ctx context.Context) (Credential, error) {
	form := url.Values{
		"client_id":     {m.clientID},
		"client_secret": {m.clientSecret},
		"grant_type":    {GrantType},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Credential{}, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	slog.Debug("requesting access token", "url", m.tokenURL)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return Credential{}, fmt.Errorf("%w: %w", ErrTokenRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return Credential{}, ErrInvalidCredentials
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTokenBody))
	if err != nil {
		return Credential{}, fmt.Errorf("failed to read token response: %w", err)
	}

	var apiErr tokenErrorResponse
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
		return Credential{}, &TokenError{Code: apiErr.Error, Description: apiErr.ErrorDescription}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return Credential{}, fmt.Errorf("%w (status %d): %v", ErrMalformedToken, resp.StatusCode, err)
	}
	if tr.AccessToken == "" || tr.TokenType == "" || tr.ExpiresIn == nil {
		return Credential{}, fmt.Errorf("%w (status %d): missing access_token, token_type or expires_in",
			ErrMalformedToken, resp.StatusCode)
	}

	cred := NewCredential(tr.AccessToken, tr.TokenType, *tr.ExpiresIn, m.now())

	slog.Debug("access token acquired",
		"token_type", cred.TokenType,
		"expires_at", cred.ExpiresAt.Format(time.RFC3339),
	)

	return cred, nil
}
