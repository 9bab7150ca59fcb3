package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/sync/singleflight"
)

// CredentialSource is the slice of the credential store the transport
// needs: token reads plus the two writes the refresh path is allowed to
// make. No other component may write tokens through the transport.
type CredentialSource interface {
	AccessToken() string
	RefreshToken() string
	SetTokens(access, refresh string) error
	Clear() error
}

const (
	authPathPrefix = "/api/v1/auth/"
	refreshPath    = "/api/v1/auth/refresh"
)

var errNoRefreshToken = errors.New("no refresh token")

// authTransport decorates an http.RoundTripper with bearer attachment
// and 401 recovery. A 401 on a non-auth endpoint triggers exactly one
// refresh exchange; concurrent 401s coalesce onto the same exchange so
// a rotating-refresh-token server never sees competing refresh calls.
type authTransport struct {
	base       http.RoundTripper
	creds      CredentialSource
	refreshURL string
	userAgent  string
	group      singleflight.Group
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	attached := ""
	if req.URL.Path != refreshPath {
		if token := t.creds.AccessToken(); token != "" {
			attached = token
			req = req.Clone(req.Context())
			req.Header.Set("Authorization", "Bearer "+attached)
		}
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || strings.HasPrefix(req.URL.Path, authPathPrefix) {
		// A 401 from login or register means bad credentials, not an
		// expired session; it must never consume the refresh token.
		return resp, nil
	}

	token, refreshErr := t.refreshedToken(req, attached)
	if refreshErr != nil {
		_ = t.creds.Clear()
		return resp, nil // propagate the original 401
	}

	retry, retryErr := rewindRequest(req, token)
	if retryErr != nil {
		return resp, nil
	}
	drain(resp)

	retryResp, err := t.base.RoundTrip(retry)
	if err != nil {
		return nil, err
	}
	// A second 401 is not retried again.
	return retryResp, nil
}

// refreshedToken returns an access token newer than the one the failed
// request carried. If another request already rotated the pair while
// this one was in flight, the stored token is reused without a further
// exchange.
func (t *authTransport) refreshedToken(req *http.Request, attached string) (string, error) {
	if current := t.creds.AccessToken(); current != "" && current != attached {
		return current, nil
	}
	v, err, _ := t.group.Do("refresh", func() (any, error) {
		// Re-read inside the flight: a flight that finished while this
		// request queued may have rotated the pair already.
		if current := t.creds.AccessToken(); current != "" && current != attached {
			return current, nil
		}
		return t.exchange(req)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// exchange trades the refresh token for a rotated access/refresh pair
// and persists it. Runs at most once at a time via the singleflight
// group.
func (t *authTransport) exchange(orig *http.Request) (string, error) {
	refreshToken := t.creds.RefreshToken()
	if refreshToken == "" {
		return "", errNoRefreshToken
	}

	payload, err := json.Marshal(map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return "", fmt.Errorf("encode refresh payload: %w", err)
	}
	req, err := http.NewRequestWithContext(orig.Context(), http.MethodPost, t.refreshURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return "", fmt.Errorf("execute refresh: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("refresh returned status %d", resp.StatusCode)
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return "", fmt.Errorf("decode refresh response: %w", err)
	}
	var pair TokenPair
	if err := json.Unmarshal(env.Data, &pair); err != nil {
		return "", fmt.Errorf("decode token pair: %w", err)
	}
	if pair.AccessToken == "" {
		return "", errors.New("refresh response missing access token")
	}
	if err := t.creds.SetTokens(pair.AccessToken, pair.RefreshToken); err != nil {
		return "", fmt.Errorf("persist tokens: %w", err)
	}
	return pair.AccessToken, nil
}

// rewindRequest clones a request for replay with a fresh bearer token.
// Bodies must be rewindable via GetBody; the client builds every body
// from a bytes.Reader so this always holds.
func rewindRequest(req *http.Request, token string) (*http.Request, error) {
	retry := req.Clone(req.Context())
	if req.Body != nil {
		if req.GetBody == nil {
			return nil, errors.New("request body cannot be replayed")
		}
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		retry.Body = body
	}
	retry.Header.Set("Authorization", "Bearer "+token)
	return retry, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}
