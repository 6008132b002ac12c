// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package gazelle

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	testUsername = "alice"
	testPassword = "hunter22"
	testSession  = "valid-session"
	testAuthKey  = "authkey-123"
	testPassKey  = "passkey-456"
)

// fakeTracker is a minimal Gazelle tracker: login.php issues a session
// cookie, ajax.php answers index and browse calls.
type fakeTracker struct {
	t      *testing.T
	server *httptest.Server

	mu           sync.Mutex
	calls        []string
	browseQuery  []string
	indexCookies []map[string]string

	loginStatus  int
	indexBody    string
	browseStatus int
}

func newFakeTracker(t *testing.T) *fakeTracker {
	t.Helper()

	ft := &fakeTracker{
		t:            t,
		loginStatus:  http.StatusFound,
		browseStatus: http.StatusOK,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/login.php", ft.handleLogin)
	mux.HandleFunc("/ajax.php", ft.handleAjax)

	ft.server = httptest.NewServer(mux)
	t.Cleanup(ft.server.Close)

	return ft
}

func (ft *fakeTracker) baseURL() string {
	return ft.server.URL + "/"
}

func (ft *fakeTracker) settings() *Settings {
	ft.t.Helper()
	s, err := NewSettings(ft.baseURL(), testUsername, testPassword)
	require.NoError(ft.t, err)
	return s
}

func (ft *fakeTracker) record(call string) {
	ft.mu.Lock()
	ft.calls = append(ft.calls, call)
	ft.mu.Unlock()
}

func (ft *fakeTracker) Calls() []string {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return append([]string(nil), ft.calls...)
}

func (ft *fakeTracker) IndexCookies() []map[string]string {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return append([]map[string]string(nil), ft.indexCookies...)
}

func (ft *fakeTracker) BrowseQueries() []string {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return append([]string(nil), ft.browseQuery...)
}

func (ft *fakeTracker) count(call string) int {
	n := 0
	for _, c := range ft.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

func (ft *fakeTracker) handleLogin(w http.ResponseWriter, r *http.Request) {
	ft.record("login")

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if r.PostForm.Get("username") != testUsername || r.PostForm.Get("password") != testPassword || r.PostForm.Get("keeplogged") != "1" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if ft.loginStatus >= http.StatusBadRequest {
		w.WriteHeader(ft.loginStatus)
		return
	}

	http.SetCookie(w, &http.Cookie{Name: "session", Value: testSession, Path: "/"})
	w.Header().Set("Location", "/index.php")
	w.WriteHeader(ft.loginStatus)
}

func (ft *fakeTracker) handleAjax(w http.ResponseWriter, r *http.Request) {
	action := r.URL.Query().Get("action")
	ft.record(action)

	w.Header().Set("Content-Type", "application/json")

	switch action {
	case "index":
		cookies := map[string]string{}
		for _, c := range r.Cookies() {
			cookies[c.Name] = c.Value
		}
		ft.mu.Lock()
		ft.indexCookies = append(ft.indexCookies, cookies)
		body := ft.indexBody
		ft.mu.Unlock()

		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if body != "" {
			_, _ = w.Write([]byte(body))
			return
		}
		if cookies["session"] != testSession {
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "failure"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "success",
			"response": map[string]any{
				"username": testUsername,
				"id":       42,
				"authkey":  testAuthKey,
				"passkey":  testPassKey,
			},
		})
	case "browse":
		ft.mu.Lock()
		ft.browseQuery = append(ft.browseQuery, r.URL.RawQuery)
		status := ft.browseStatus
		ft.mu.Unlock()

		if c, err := r.Cookie("session"); err != nil || c.Value != testSession {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"status":"success","response":{"results":[]}}`))
	default:
		w.WriteHeader(http.StatusBadRequest)
	}
}
