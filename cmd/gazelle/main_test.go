// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/autobrr/gazelle/internal/domain"
	"github.com/autobrr/gazelle/internal/models"
	"github.com/autobrr/gazelle/internal/services/gazelle"
)

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    outputFormat
		wantErr bool
	}{
		{input: "text", want: outputText},
		{input: " JSON ", want: outputJSON},
		{input: "yml", want: outputYAML},
		{input: "yaml", want: outputYAML},
		{input: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseOutputFormat(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildCriteria(t *testing.T) {
	base := gazelle.BaseCriteria{SearchTerm: "x", Categories: []int{3000}}

	tests := []struct {
		name    string
		kind    string
		imdb    string
		artist  string
		want    gazelle.SearchCriteria
		wantErr string
	}{
		{name: "default basic", kind: "", want: gazelle.BasicSearchCriteria{BaseCriteria: base}},
		{name: "movie", kind: "movie", imdb: "tt1", want: gazelle.MovieSearchCriteria{BaseCriteria: base, ImdbID: "tt1"}},
		{name: "tvsearch alias", kind: "tvsearch", imdb: "tt2", want: gazelle.TvSearchCriteria{BaseCriteria: base, ImdbID: "tt2"}},
		{name: "music", kind: "music", artist: "Boards of Canada", want: gazelle.MusicSearchCriteria{BaseCriteria: base, Artist: "Boards of Canada"}},
		{name: "book", kind: "book", want: gazelle.BookSearchCriteria{BaseCriteria: base}},
		{name: "imdb on music", kind: "music", imdb: "tt1", wantErr: "--imdb only applies to movie and tv searches"},
		{name: "artist on movie", kind: "movie", artist: "a", wantErr: "--artist, --label and --album only apply to music searches"},
		{name: "unknown", kind: "podcast", wantErr: `unknown search type "podcast"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildCriteria(tt.kind, base, tt.imdb, tt.artist, "", "")
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func testChain() gazelle.RequestChain {
	return gazelle.RequestChain{{
		URL:     "https://tracker.example/ajax.php?action=browse&action=browse",
		Method:  http.MethodGet,
		Accept:  "application/json",
		Cookies: gazelle.CookieSet{"session": "secret-session"},
	}}
}

func TestRenderChain_RedactsCookies(t *testing.T) {
	tests := []struct {
		name        string
		format      outputFormat
		showCookies bool
		contains    []string
		excludes    []string
	}{
		{
			name:     "text",
			format:   outputText,
			contains: []string{"GET https://tracker.example/ajax.php?action=browse&action=browse", "Cookie: session=" + domain.RedactedStr},
			excludes: []string{"secret-session"},
		},
		{
			name:     "json",
			format:   outputJSON,
			contains: []string{`"session": "<redacted>"`},
			excludes: []string{"secret-session"},
		},
		{
			name:        "yaml revealed",
			format:      outputYAML,
			showCookies: true,
			contains:    []string{"session: secret-session", "method: GET"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, renderChain(&buf, tt.format, testChain(), tt.showCookies))

			out := buf.String()
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestRenderChain_YAMLRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderChain(&buf, outputYAML, testChain(), false))

	var views []requestView
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, http.MethodGet, views[0].Method)
	assert.Equal(t, domain.RedactedStr, views[0].Cookies["session"])
}

func TestRenderStatus(t *testing.T) {
	now := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	expired := now.Add(-time.Hour)
	records := []*models.IndexerCookies{
		{Indexer: "ops", Cookies: gazelle.CookieSet{"session": "a", "keeplogged": "1"}, ExpiresAt: &expired, UpdatedAt: now},
	}

	var buf bytes.Buffer
	require.NoError(t, renderStatus(&buf, outputText, records, now))
	assert.Contains(t, buf.String(), "ops\tcookies: keeplogged,session")
	assert.Contains(t, buf.String(), "(expired)")
	assert.NotContains(t, buf.String(), "session=a")

	buf.Reset()
	require.NoError(t, renderStatus(&buf, outputText, nil, now))
	assert.Equal(t, "No cached sessions\n", buf.String())
}

// fakeTracker answers login, index and browse calls for the command tests.
type fakeTracker struct {
	mu    sync.Mutex
	calls []string
}

func (ft *fakeTracker) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/login.php", func(w http.ResponseWriter, r *http.Request) {
		ft.record("login")
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "cli-session"})
		w.WriteHeader(http.StatusFound)
	})
	mux.HandleFunc("/ajax.php", func(w http.ResponseWriter, r *http.Request) {
		action := r.URL.Query().Get("action")
		ft.record(action)

		c, err := r.Cookie("session")
		if err != nil || c.Value != "cli-session" {
			if action == "index" {
				fmt.Fprint(w, `{"status":"failure"}`)
				return
			}
			w.WriteHeader(http.StatusForbidden)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		switch action {
		case "index":
			fmt.Fprint(w, `{"status":"success","response":{"authkey":"ak","passkey":"pk"}}`)
		default:
			fmt.Fprint(w, `{"status":"success","response":{"results":[]}}`)
		}
	})
	return mux
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

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestCommands_EndToEnd(t *testing.T) {
	ft := &fakeTracker{}
	server := httptest.NewServer(ft.handler())
	t.Cleanup(server.Close)

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")
	content := fmt.Sprintf("baseUrl = %q\nusername = \"alice\"\npassword = \"hunter22\"\nindexerName = \"test\"\nlogLevel = \"ERROR\"\n", server.URL)
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))

	out, err := runCommand(t, "--config-dir", configPath, "recent", "--execute", "-o", "json")
	require.NoError(t, err)

	var pages []pageView
	require.NoError(t, json.Unmarshal([]byte(out), &pages))
	require.Len(t, pages, 1)
	assert.Equal(t, http.StatusOK, pages[0].StatusCode)
	assert.Equal(t, domain.RedactedStr, pages[0].Request.Cookies["session"])
	assert.Equal(t, []string{"login", "index", "browse"}, ft.Calls())

	out, err = runCommand(t, "--config-dir", configPath, "search", "--type", "music", "--artist", "Autechre")
	require.NoError(t, err)
	assert.Contains(t, out, "&artistname=Autechre")
	assert.Equal(t, []string{"login", "index", "browse", "index"}, ft.Calls())

	out, err = runCommand(t, "--config-dir", configPath, "status")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "test\tcookies: session"))

	out, err = runCommand(t, "--config-dir", configPath, "search", "--type", "book", "--term", "dune")
	require.Error(t, err)
	assert.ErrorIs(t, err, gazelle.ErrUnsupportedCriteria)

	out, err = runCommand(t, "--config-dir", configPath, "logout")
	require.NoError(t, err)
	assert.Equal(t, "Session for test cleared\n", out)

	out, err = runCommand(t, "--config-dir", configPath, "status")
	require.NoError(t, err)
	assert.Equal(t, "No cached sessions\n", out)
}

func TestGenerateConfigCommand(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "gazelle.toml")

	out, err := runCommand(t, "--config-dir", configPath, "generate-config")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration file created successfully at: "+configPath)

	out, err = runCommand(t, "--config-dir", configPath, "generate-config")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration file already exists")
}
