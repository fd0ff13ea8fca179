package preference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jwalitptl/notifier/internal/model"
	"github.com/jwalitptl/notifier/pkg/errors"
)

// Client is the remote preference record API. All calls are best effort:
// the store logs failures and keeps running on local state.
type Client interface {
	// HasCredential reports whether a usable bearer credential is present.
	// Without one the store skips remote traffic entirely.
	HasCredential() bool
	// Fetch returns the remote record as a patch: only fields present in
	// the response are set, so merging cannot blank out local fields.
	Fetch(ctx context.Context) (*model.PreferencesPatch, error)
	// Push sends a partial record. The response body is ignored.
	Push(ctx context.Context, patch *model.PreferencesPatch) error
}

// HTTPClient talks to the platform preference endpoint with a bearer token.
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewHTTPClient(baseURL, token string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

// HasCredential is false for an empty token and for a JWT that is already
// expired; an opaque non-JWT token is assumed usable and left to the server.
func (c *HTTPClient) HasCredential() bool {
	if c.token == "" {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(c.token, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return exp.After(time.Now())
}

func (c *HTTPClient) Fetch(ctx context.Context) (*model.PreferencesPatch, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/preferences", nil)
	if err != nil {
		return nil, errors.Internal(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Unavailable("preference fetch", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Unavailable("preference fetch",
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var patch model.PreferencesPatch
	if err := json.NewDecoder(resp.Body).Decode(&patch); err != nil {
		return nil, errors.Unavailable("preference fetch", err)
	}
	return &patch, nil
}

func (c *HTTPClient) Push(ctx context.Context, patch *model.PreferencesPatch) error {
	body, err := json.Marshal(patch)
	if err != nil {
		return errors.Internal(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/preferences", bytes.NewReader(body))
	if err != nil {
		return errors.Internal(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Unavailable("preference sync", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Unavailable("preference sync",
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	return nil
}
