package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// noCredentialsMarker is the structured reason the backend attaches to
// responses rejected for missing or invalid credentials. It triggers the
// same forced-logout path as a 401 status.
const noCredentialsMarker = "no valid credentials"

const maxResponseBody = 1 << 20

var _ AuthService = (*Client)(nil)

// Client is the HTTP implementation of AuthService.
type Client struct {
	baseURL string
	http    *http.Client
	logger  Logger
}

// ClientOption customizes Client construction.
type ClientOption func(*Client)

// WithClientLogger overrides the default logger.
func WithClientLogger(logger Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient overrides the underlying http.Client (useful for tests).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// NewClient returns a Client for the backend at cfg.GetBaseURL().
func NewClient(cfg Config, opts ...ClientOption) *Client {
	timeout := 15 * time.Second
	if cfg.GetRequestTimeout() > 0 {
		timeout = time.Duration(cfg.GetRequestTimeout()) * time.Second
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.GetBaseURL(), "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

type userPayload struct {
	Email   string `json:"email"`
	Role    string `json:"role"`
	Faculty string `json:"faculty,omitempty"`
}

// apiEnvelope captures the reason fields backends attach to non-success
// responses; whichever is present wins.
type apiEnvelope struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
	Error   string `json:"error"`
}

func (e apiEnvelope) reason() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Detail != "":
		return e.Detail
	default:
		return e.Error
	}
}

// CheckEmail reports whether the address already has an account.
func (c *Client) CheckEmail(ctx context.Context, email string) (bool, error) {
	var out struct {
		Exists bool `json:"exists"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/auth/check-email", "",
		map[string]string{"email": email}, &out,
		"could not check the email address")
	if err != nil {
		return false, err
	}
	return out.Exists, nil
}

// SendVerificationCode asks the backend to mail a one-time code.
func (c *Client) SendVerificationCode(ctx context.Context, email string) error {
	var out struct {
		Success bool `json:"success"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/auth/send-code", "",
		map[string]string{"email": email}, &out,
		"could not send the verification code")
	if err != nil {
		return err
	}
	if !out.Success {
		return RejectionError("/auth/send-code", "could not send the verification code", http.StatusOK)
	}
	return nil
}

// VerifyCode checks a one-time code against the backend.
func (c *Client) VerifyCode(ctx context.Context, email, code string) (bool, error) {
	var out struct {
		Valid bool `json:"valid"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/auth/verify-code", "",
		map[string]string{"email": email, "code": code}, &out,
		"could not verify the code")
	if err != nil {
		return false, err
	}
	return out.Valid, nil
}

// Register creates the account and returns its first credentials.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*Credentials, error) {
	var out struct {
		Success bool        `json:"success"`
		Token   string      `json:"token"`
		User    userPayload `json:"user"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/auth/register", "", req, &out,
		"registration failed")
	if err != nil {
		return nil, err
	}
	if !out.Success || out.Token == "" {
		return nil, RejectionError("/auth/register", "registration failed", http.StatusOK)
	}

	role, _ := ParseRole(out.User.Role)
	return &Credentials{
		Token: out.Token,
		Email: out.User.Email,
		Role:  role,
	}, nil
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, email, password string) (*Credentials, error) {
	var out struct {
		Token string      `json:"token"`
		User  userPayload `json:"user"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/auth/login", "",
		map[string]string{"email": email, "password": password}, &out,
		"login failed")
	if err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, RejectionError("/auth/login", "login failed", http.StatusOK)
	}

	role, _ := ParseRole(out.User.Role)
	return &Credentials{
		Token: out.Token,
		Email: out.User.Email,
		Role:  role,
	}, nil
}

// ValidateToken asks the backend who the token belongs to.
func (c *Client) ValidateToken(ctx context.Context, token string) (*Account, error) {
	var out struct {
		User userPayload `json:"user"`
	}
	err := c.doJSON(ctx, http.MethodGet, "/auth/me", token, nil, &out,
		"could not validate the session")
	if err != nil {
		return nil, err
	}

	role, _ := ParseRole(out.User.Role)
	return &Account{
		Email:   out.User.Email,
		Role:    role,
		Faculty: out.User.Faculty,
	}, nil
}

// doJSON performs one request and maps failures into the error taxonomy:
// transport failures become connectivity errors, 401 or the credentials
// marker becomes ErrNoCredentials, any other non-2xx becomes a rejection
// carrying the server reason or defaultReason, and a 2xx whose body cannot
// be parsed is treated as a rejection as well.
func (c *Client) doJSON(ctx context.Context, method, path, token string, body, out any, defaultReason string) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode request body")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request to %s failed: %v", path, err)
		return ConnectivityError(err, path)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return ConnectivityError(err, path)
	}

	var env apiEnvelope
	_ = json.Unmarshal(raw, &env)

	if resp.StatusCode == http.StatusUnauthorized || IsNoCredentialsReason(env.reason()) {
		return ErrNoCredentials.WithMetadata(map[string]any{
			"op":     path,
			"status": resp.StatusCode,
		})
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reason := env.reason()
		if reason == "" {
			reason = defaultReason
		}
		return RejectionError(path, reason, resp.StatusCode)
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		c.logger.Warn("unparseable response from %s: %v", path, err)
		return RejectionError(path, defaultReason, resp.StatusCode)
	}

	return nil
}

// IsNoCredentialsReason reports whether a server-supplied reason string is
// the backend's structured credentials marker. Any client sharing the error
// taxonomy maps it to ErrNoCredentials regardless of HTTP status.
func IsNoCredentialsReason(reason string) bool {
	return strings.EqualFold(strings.TrimSpace(reason), noCredentialsMarker)
}
