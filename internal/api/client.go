package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client talks to the video platform HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultBaseURL   = "http://localhost:8080"
	defaultUserAgent = "framepick/0.1"
	requestTimeout   = 30 * time.Second
)

// NewClient builds a Client for the given server URL. All requests are
// routed through an authenticating transport backed by creds.
func NewClient(rawURL string, creds CredentialSource) (*Client, error) {
	base, err := parseBaseURL(rawURL)
	if err != nil {
		return nil, err
	}
	refreshURL := base.ResolveReference(&url.URL{Path: refreshPath})
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
			Transport: &authTransport{
				base:       http.DefaultTransport,
				creds:      creds,
				refreshURL: refreshURL.String(),
				userAgent:  defaultUserAgent,
			},
		},
		userAgent: defaultUserAgent,
	}, nil
}

// Register creates an account. The session is not touched; callers log
// in afterwards. Server-side rejections surface as *ValidationError.
func (c *Client) Register(ctx context.Context, username, email, password string) (*Identity, error) {
	body := map[string]string{"username": username, "email": email, "password": password}
	var identity Identity
	err := c.postJSON(ctx, "/api/v1/auth/register", body, &identity)
	if err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
			return nil, &ValidationError{Message: apiErr.Message}
		}
		return nil, err
	}
	return &identity, nil
}

// Login exchanges credentials for an access/refresh pair plus the user
// identity. A 401-class rejection surfaces as ErrInvalidCredentials.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthSession, error) {
	body := map[string]string{"email": email, "password": password}
	var session AuthSession
	err := c.postJSON(ctx, "/api/v1/auth/login", body, &session)
	if err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return &session, nil
}

// Logout asks the server to invalidate a refresh token. Best effort;
// the session manager clears local state regardless of the outcome.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	body := map[string]string{"refresh_token": refreshToken}
	return c.postJSON(ctx, "/api/v1/auth/logout", body, nil)
}

// ListVideos retrieves one page of the caller's videos.
func (c *Client) ListVideos(ctx context.Context, limit, offset int) (*VideoList, error) {
	values := url.Values{}
	if limit > 0 {
		values.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		values.Set("offset", strconv.Itoa(offset))
	}
	rel := &url.URL{Path: "/api/v1/videos", RawQuery: values.Encode()}
	var list VideoList
	if err := c.doURL(ctx, http.MethodGet, rel, nil, &list); err != nil {
		return nil, mapAuthErr(err)
	}
	return &list, nil
}

// VideoStatus retrieves the current processing status of one video.
func (c *Client) VideoStatus(ctx context.Context, videoID string) (*VideoStatus, error) {
	rel := &url.URL{Path: "/api/v1/videos/" + videoID + "/status"}
	var status VideoStatus
	if err := c.doURL(ctx, http.MethodGet, rel, nil, &status); err != nil {
		return nil, mapAuthErr(err)
	}
	return &status, nil
}

// DownloadURL retrieves a time-limited download link for a completed
// video. The server rejects videos that have not finished; callers gate
// on status first via the tracker.
func (c *Client) DownloadURL(ctx context.Context, videoID string) (*Download, error) {
	rel := &url.URL{Path: "/api/v1/videos/" + videoID + "/download"}
	var download Download
	if err := c.doURL(ctx, http.MethodGet, rel, nil, &download); err != nil {
		return nil, mapAuthErr(err)
	}
	return &download, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body, dest any) error {
	rel := &url.URL{Path: path}
	return c.doURL(ctx, http.MethodPost, rel, body, dest)
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, body, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)

	var payload *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(encoded)
	} else {
		payload = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), payload)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	return c.send(req, dest)
}

func (c *Client) send(req *http.Request, dest any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode >= 400 {
		// Absent data with an error status is an application-level
		// rejection; the envelope message is surfaced verbatim.
		return &Error{Status: resp.StatusCode, Message: env.Message}
	}
	if dest == nil {
		return nil
	}
	if decodeErr != nil {
		return fmt.Errorf("decode response: %w", decodeErr)
	}
	if len(env.Data) == 0 {
		return fmt.Errorf("response missing data for %s", req.URL.Path)
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

// mapAuthErr converts a 401 that survived the transport's refresh path
// into the terminal session error.
func mapAuthErr(err error) error {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
		return ErrSessionExpired
	}
	return err
}

func parseBaseURL(rawURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse server url %q: %w", rawURL, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
