// Package source implements the meta.Source interface against the Tableau
// REST API and the Metadata API GraphQL endpoint.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/motemen/go-loghttp"

	"tabcli/internal/auth"
	"tabcli/internal/meta"
)

// DefaultAPIVersion is the REST API version used when none is configured.
const DefaultAPIVersion = "3.19"

// Client is a session against one Tableau Server or Cloud site. It is not
// safe for concurrent use; the CLI is a single-threaded, request-at-a-time
// process.
type Client struct {
	baseURL string
	version string
	site    string
	cred    auth.Credential
	http    *http.Client
	logger  meta.Logger

	// set by SignIn
	token  string
	siteID string
}

// Option configures a Client.
type Option func(*Client)

// WithAPIVersion overrides the REST API version segment in request URLs.
func WithAPIVersion(v string) Option {
	return func(c *Client) {
		if v != "" {
			c.version = v
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client (tests).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the structured logger.
func WithLogger(l meta.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithVerboseHTTP wraps the transport to log every request and response.
func WithVerboseHTTP() Option {
	return func(c *Client) {
		c.http.Transport = &loghttp.Transport{Transport: c.http.Transport}
	}
}

// NewClient creates a client for the given server and credential. The client
// does not dial until SignIn.
func NewClient(cfg auth.ServerConfig, cred auth.Credential, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(cfg.ServerURL, "/"),
		version: DefaultAPIVersion,
		site:    cfg.Site,
		cred:    cred,
		http:    &http.Client{Timeout: 60 * time.Second},
		logger:  meta.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// signInRequest is the REST sign-in payload. Exactly one credential variant
// is populated.
type signInRequest struct {
	Credentials struct {
		Name       string `json:"name,omitempty"`
		Password   string `json:"password,omitempty"`
		TokenName  string `json:"personalAccessTokenName,omitempty"`
		TokenValue string `json:"personalAccessTokenSecret,omitempty"`
		JWT        string `json:"jwt,omitempty"`
		Site       struct {
			ContentURL string `json:"contentUrl"`
		} `json:"site"`
	} `json:"credentials"`
}

type signInResponse struct {
	Credentials struct {
		Token string `json:"token"`
		Site  struct {
			ID         string `json:"id"`
			ContentURL string `json:"contentUrl"`
		} `json:"site"`
	} `json:"credentials"`
}

// SignIn authenticates the session. Bad or incomplete credentials surface as
// a meta.AuthError, which is fatal for the enclosing command.
func (c *Client) SignIn(ctx context.Context) error {
	if err := c.cred.Validate(); err != nil {
		return &meta.AuthError{Reason: err.Error()}
	}

	var req signInRequest
	req.Credentials.Site.ContentURL = c.site
	switch c.cred.Method {
	case auth.MethodPAT:
		req.Credentials.TokenName = c.cred.TokenName
		req.Credentials.TokenValue = c.cred.TokenValue
	case auth.MethodPassword:
		req.Credentials.Name = c.cred.Username
		req.Credentials.Password = c.cred.Password
	case auth.MethodJWT:
		req.Credentials.JWT = c.cred.JWT
	}

	var resp signInResponse
	if err := c.do(ctx, http.MethodPost, c.apiURL("auth/signin"), req, &resp); err != nil {
		return &meta.AuthError{Reason: fmt.Sprintf("signing in to %s", c.baseURL), Err: err}
	}
	if resp.Credentials.Token == "" {
		return &meta.AuthError{Reason: "server returned no session token"}
	}

	c.token = resp.Credentials.Token
	c.siteID = resp.Credentials.Site.ID
	c.logger.Info("signed in", "server", c.baseURL, "site", resp.Credentials.Site.ContentURL)
	return nil
}

// SignOut invalidates the session token. Safe to call when not signed in.
func (c *Client) SignOut(ctx context.Context) error {
	if c.token == "" {
		return nil
	}
	err := c.do(ctx, http.MethodPost, c.apiURL("auth/signout"), nil, nil)
	c.token = ""
	c.siteID = ""
	if err != nil {
		return fmt.Errorf("signing out: %w", err)
	}
	return nil
}

// Info returns server and site identity. The serverinfo endpoint does not
// require authentication.
func (c *Client) Info(ctx context.Context) (meta.ServerInfo, error) {
	var resp struct {
		ServerInfo struct {
			ProductVersion struct {
				Value string `json:"value"`
			} `json:"productVersion"`
			RestAPIVersion string `json:"restApiVersion"`
		} `json:"serverInfo"`
	}
	if err := c.do(ctx, http.MethodGet, c.apiURL("serverinfo"), nil, &resp); err != nil {
		return meta.ServerInfo{}, fmt.Errorf("fetching server info: %w", err)
	}
	return meta.ServerInfo{
		ServerURL:      c.baseURL,
		Site:           c.site,
		ProductVersion: resp.ServerInfo.ProductVersion.Value,
		APIVersion:     resp.ServerInfo.RestAPIVersion,
	}, nil
}

// apiURL builds a versioned REST URL outside any site.
func (c *Client) apiURL(path string) string {
	return fmt.Sprintf("%s/api/%s/%s", c.baseURL, c.version, path)
}

// siteURL builds a versioned REST URL under the signed-in site.
func (c *Client) siteURL(path string) string {
	return fmt.Sprintf("%s/api/%s/sites/%s/%s", c.baseURL, c.version, c.siteID, path)
}

// do performs one JSON round trip. A 401/403 response is reported as an
// authentication failure; other non-2xx responses include the server's error
// body.
func (c *Client) do(ctx context.Context, method, url string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("X-Tableau-Auth", c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("server rejected credentials (%s): %s", resp.Status, errorSummary(data))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s: %s: %s", method, url, resp.Status, errorSummary(data))
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// errorSummary extracts the error detail from a REST error body, falling back
// to the raw bytes.
func errorSummary(data []byte) string {
	var body struct {
		Error struct {
			Summary string `json:"summary"`
			Detail  string `json:"detail"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Error.Summary != "" {
		if body.Error.Detail != "" {
			return body.Error.Summary + ": " + body.Error.Detail
		}
		return body.Error.Summary
	}
	s := strings.TrimSpace(string(data))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

// intFromAny coerces pagination values, which the REST API returns as strings.
func intFromAny(v any) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case string:
		n, _ := strconv.Atoi(t)
		return n
	}
	return 0
}

// Compile-time check that Client implements the meta.Source interface
var _ meta.Source = (*Client)(nil)
