package campaigns

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	authclient "github.com/sharif-senfi/go-auth-client"
)

const maxResponseBody = 1 << 20

// Client talks to the campaign endpoints. Authenticated operations attach
// the caller's bearer token; error mapping follows the same taxonomy as the
// auth client (connectivity vs rejection vs no-credentials).
type Client struct {
	baseURL string
	http    *http.Client
	logger  authclient.Logger
}

// ClientOption customizes Client construction.
type ClientOption func(*Client)

// WithClientLogger overrides the default logger.
func WithClientLogger(logger authclient.Logger) ClientOption {
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
func NewClient(cfg authclient.Config, opts ...ClientOption) *Client {
	timeout := 15 * time.Second
	if cfg.GetRequestTimeout() > 0 {
		timeout = time.Duration(cfg.GetRequestTimeout()) * time.Second
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.GetBaseURL(), "/"),
		http:    &http.Client{Timeout: timeout},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

// List fetches all campaigns visible to the caller. An empty token fetches
// the public view.
func (c *Client) List(ctx context.Context, token string) ([]Campaign, error) {
	var out struct {
		Campaigns []Campaign `json:"campaigns"`
	}
	err := c.doJSON(ctx, http.MethodGet, "/campaigns", token, nil, &out,
		"could not load campaigns")
	if err != nil {
		return nil, err
	}
	return out.Campaigns, nil
}

// Get fetches a single campaign.
func (c *Client) Get(ctx context.Context, id uuid.UUID, token string) (*Campaign, error) {
	var out struct {
		Campaign Campaign `json:"campaign"`
	}
	path := fmt.Sprintf("/campaigns/%s", id)
	err := c.doJSON(ctx, http.MethodGet, path, token, nil, &out,
		"could not load the campaign")
	if err != nil {
		return nil, err
	}
	return &out.Campaign, nil
}

// Sign adds the caller's signature to an open campaign.
func (c *Client) Sign(ctx context.Context, id uuid.UUID, token string) error {
	var out struct {
		Success bool `json:"success"`
	}
	path := fmt.Sprintf("/campaigns/%s/sign", id)
	err := c.doJSON(ctx, http.MethodPost, path, token, struct{}{}, &out,
		"could not sign the campaign")
	if err != nil {
		return err
	}
	if !out.Success {
		return authclient.RejectionError(path, "could not sign the campaign", http.StatusOK)
	}
	return nil
}

// Create submits a campaign draft. The server decides whether it goes live
// directly or waits for approval, based on the caller's role.
func (c *Client) Create(ctx context.Context, token string, draft Draft) (*Campaign, error) {
	if err := draft.Validate(); err != nil {
		return nil, authclient.FieldError(err, "invalid campaign draft")
	}

	var out struct {
		Campaign Campaign `json:"campaign"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/campaigns", token, draft, &out,
		"could not create the campaign")
	if err != nil {
		return nil, err
	}
	return &out.Campaign, nil
}

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
		if c.logger != nil {
			c.logger.Warn("request to %s failed: %v", path, err)
		}
		return authclient.ConnectivityError(err, path)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return authclient.ConnectivityError(err, path)
	}

	var env apiEnvelope
	_ = json.Unmarshal(raw, &env)

	if resp.StatusCode == http.StatusUnauthorized || authclient.IsNoCredentialsReason(env.reason()) {
		return authclient.ErrNoCredentials.WithMetadata(map[string]any{
			"op":     path,
			"status": resp.StatusCode,
		})
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reason := env.reason()
		if reason == "" {
			reason = defaultReason
		}
		return authclient.RejectionError(path, reason, resp.StatusCode)
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return authclient.RejectionError(path, defaultReason, resp.StatusCode)
	}

	return nil
}
