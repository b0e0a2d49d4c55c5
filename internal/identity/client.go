// Package identity signs users in and out against the hosted identity
// provider using its password-grant endpoints. Provider errors are
// collapsed into generic sentinels; no structured error code reaches
// the user.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

var (
	// ErrInvalidCredentials is returned for any sign-in rejection.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrSignupFailed is returned for any sign-up rejection.
	ErrSignupFailed = errors.New("could not create account")
	// ErrUnavailable indicates a transport-level failure reaching the
	// provider.
	ErrUnavailable = errors.New("identity provider unreachable")
)

// User is the profile the provider returns at sign-in. Metadata is
// opaque apart from the optional display name keys.
type User struct {
	ID       string         `json:"id"`
	Email    string         `json:"email"`
	Metadata map[string]any `json:"user_metadata,omitempty"`
}

// DisplayName prefers the profile name over the email.
func (u User) DisplayName() string {
	for _, key := range []string{"name", "full_name"} {
		if value, ok := u.Metadata[key].(string); ok && value != "" {
			return value
		}
	}
	return u.Email
}

// Session is the locally cached sign-in record. The tokens are treated
// as opaque.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// Config carries connection parameters for the identity provider.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Option configures optional behaviour for the Client.
type Option func(*Client)

// WithLogger overrides the logger used to record rejected auth calls.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// Client talks to the identity provider.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *log.Logger
}

// NewClient constructs a Client with sane defaults.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log.New(log.Writer(), "[identity] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SignIn exchanges credentials for a session via the password grant.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	payload := map[string]string{"email": email, "password": password}
	status, body, err := c.post(ctx, "/auth/v1/token?grant_type=password", payload)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		c.logger.Printf("sign in rejected (status=%d): %s", status, body)
		return nil, ErrInvalidCredentials
	}

	var session Session
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

// SignUp registers a new account and immediately signs it in so the
// caller ends up with a usable session.
func (c *Client) SignUp(ctx context.Context, email, password, name string) (*Session, error) {
	payload := map[string]any{
		"email":    email,
		"password": password,
		"data":     map[string]string{"name": name},
	}
	status, body, err := c.post(ctx, "/auth/v1/signup", payload)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		c.logger.Printf("sign up rejected (status=%d): %s", status, body)
		return nil, ErrSignupFailed
	}

	return c.SignIn(ctx, email, password)
}

func (c *Client) post(ctx context.Context, path string, payload any) (int, []byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("apikey", c.cfg.APIKey)
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp.StatusCode, body, nil
}
