// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package gazelle

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/gazelle/internal/buildinfo"
)

const (
	loginTimeout   = 15 * time.Second
	cookieLifetime = 30 * 24 * time.Hour

	maxIndexResponseBytes int64 = 1 << 20

	indexStatusSuccess = "success"

	acceptJSON = "application/json"
)

// HTTPDoer executes HTTP requests. *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewHTTPClient returns a client suitable for a SessionManager. Redirects are
// not followed so the session cookies set on the login redirect are visible.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// SessionState is the lifecycle state of a SessionManager.
type SessionState int32

const (
	StateUnauthenticated SessionState = iota
	StateAuthenticating
	StateAuthenticated
)

func (s SessionState) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// IndexResult is the body of an ajax.php?action=index call.
type IndexResult struct {
	Status   string        `json:"status"`
	Response IndexResponse `json:"response"`
}

type IndexResponse struct {
	Username string `json:"username"`
	ID       int    `json:"id"`
	Authkey  string `json:"authkey"`
	Passkey  string `json:"passkey"`
}

// SessionManager owns the cookie session of one indexer. Every Authenticate
// call verifies the session against the tracker, logging in first when no
// cookies are cached.
type SessionManager struct {
	settings *Settings
	store    CookieStore
	client   HTTPDoer
	now      func() time.Time
	logger   zerolog.Logger

	state  atomic.Int32
	closed atomic.Bool
}

type SessionOption func(*SessionManager)

// WithClock overrides the clock used for cookie expiry bookkeeping.
func WithClock(now func() time.Time) SessionOption {
	return func(m *SessionManager) {
		if now != nil {
			m.now = now
		}
	}
}

func WithLogger(logger zerolog.Logger) SessionOption {
	return func(m *SessionManager) {
		m.logger = logger
	}
}

func NewSessionManager(settings *Settings, store CookieStore, client HTTPDoer, opts ...SessionOption) *SessionManager {
	if client == nil {
		client = NewHTTPClient(30 * time.Second)
	}
	if store == nil {
		store = NewMemoryCookieStore()
	}

	m := &SessionManager{
		settings: settings,
		store:    store,
		client:   client,
		now:      time.Now,
		logger:   log.Logger.With().Str("module", "gazelle").Str("tracker", trackerHost(settings.BaseURL)).Logger(),
	}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

// State returns the current lifecycle state.
func (m *SessionManager) State() SessionState {
	return SessionState(m.state.Load())
}

func (m *SessionManager) setState(state SessionState) {
	prev := SessionState(m.state.Swap(int32(state)))
	if prev != state {
		m.logger.Trace().Stringer("from", prev).Stringer("to", state).Msg("Gazelle session state changed")
	}
}

// Authenticate returns a cookie set the tracker has just accepted.
func (m *SessionManager) Authenticate(ctx context.Context) (CookieSet, error) {
	if m.closed.Load() {
		return nil, ErrSessionClosed
	}
	if ctx == nil {
		ctx = context.Background()
	}

	m.setState(StateAuthenticating)

	cookies, err := m.store.Get(ctx)
	if err != nil {
		m.setState(StateUnauthenticated)
		return nil, errors.Wrap(err, "load gazelle cookies")
	}

	if len(cookies) == 0 {
		cookies, err = m.login(ctx)
		if err != nil {
			m.setState(StateUnauthenticated)
			return nil, err
		}
	}

	index, statusCode, err := m.fetchIndex(ctx, cookies)
	if err != nil {
		m.setState(StateUnauthenticated)
		return nil, err
	}

	if index == nil || strings.TrimSpace(index.Status) == "" || index.Status != indexStatusSuccess {
		m.logger.Debug().Int("status_code", statusCode).Msg("Gazelle authentication failed.")
		m.setState(StateUnauthenticated)

		authErr := &AuthenticationError{Reason: verificationFailureReason(index), StatusCode: statusCode}
		if err := m.store.Set(ctx, nil, nil); err != nil {
			m.logger.Error().Err(err).Msg("Failed to clear gazelle cookies after rejected session")
			return nil, authErr
		}
		authErr.Cleared = true
		return nil, authErr
	}

	m.logger.Debug().Msg("Gazelle authentication succeeded.")

	m.settings.setKeys(index.Response.Authkey, index.Response.Passkey)
	m.setState(StateAuthenticated)

	return cookies, nil
}

// Reset forgets the session: cached cookies and keys are cleared.
func (m *SessionManager) Reset(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	m.settings.setKeys("", "")
	m.setState(StateUnauthenticated)

	if err := m.store.Set(ctx, nil, nil); err != nil {
		return errors.Wrap(err, "clear gazelle cookies")
	}

	m.logger.Debug().Msg("Gazelle session reset")
	return nil
}

// Close tears the manager down. Cached cookies are kept for the next process;
// further Authenticate calls fail with ErrSessionClosed.
func (m *SessionManager) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	m.setState(StateUnauthenticated)
	return nil
}

func (m *SessionManager) login(ctx context.Context) (CookieSet, error) {
	form := url.Values{}
	form.Set("username", m.settings.Username)
	form.Set("password", m.settings.Password)
	form.Set("keeplogged", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.settings.LoginURL(), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.Wrap(err, "build gazelle login request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", acceptJSON)
	req.Header.Set("User-Agent", buildinfo.UserAgent)

	loginCtx, cancel := context.WithTimeout(ctx, loginTimeout)
	defer cancel()
	req = req.WithContext(loginCtx)

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "gazelle login request failed")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxIndexResponseBytes))

	if resp.StatusCode >= http.StatusBadRequest {
		m.logger.Debug().Int("status_code", resp.StatusCode).Msg("Gazelle login rejected")
		return nil, &AuthenticationError{Reason: "login rejected", StatusCode: resp.StatusCode}
	}

	cookies := cookiesFromResponse(resp)
	expiresAt := m.now().Add(cookieLifetime)
	if err := m.store.Set(ctx, cookies, &expiresAt); err != nil {
		return nil, errors.Wrap(err, "persist gazelle cookies")
	}

	m.logger.Debug().
		Int("cookies", len(cookies)).
		Time("expires_at", expiresAt).
		Msg("Gazelle login completed")

	return cookies, nil
}

// fetchIndex posts to ajax.php?action=index. A body that is not valid JSON
// yields a nil result; only transport failures are returned as errors.
func (m *SessionManager) fetchIndex(ctx context.Context, cookies CookieSet) (*IndexResult, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.settings.APIURL()+"?action=index", nil)
	if err != nil {
		return nil, 0, errors.Wrap(err, "build gazelle index request")
	}
	req.Header.Set("Accept", acceptJSON)
	req.Header.Set("User-Agent", buildinfo.UserAgent)
	cookies.Apply(req)

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, 0, errors.Wrap(err, "gazelle index request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxIndexResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, errors.Wrap(err, "read gazelle index response")
	}

	var result IndexResult
	if err := json.Unmarshal(body, &result); err != nil {
		m.logger.Trace().Err(err).Int("status_code", resp.StatusCode).Msg("Gazelle index response is not JSON")
		return nil, resp.StatusCode, nil
	}

	return &result, resp.StatusCode, nil
}

func verificationFailureReason(index *IndexResult) string {
	switch {
	case index == nil:
		return "index response was not valid JSON"
	case strings.TrimSpace(index.Status) == "":
		return "index response has no status"
	default:
		return "index returned status " + index.Status
	}
}

func trackerHost(baseURL string) string {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Host == "" {
		return baseURL
	}
	return parsed.Host
}
