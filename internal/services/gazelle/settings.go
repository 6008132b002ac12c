// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package gazelle

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
)

// Settings holds the per-indexer configuration. Credentials and flags are
// read-only after construction; the auth and pass keys are written back by a
// successful session verification.
type Settings struct {
	BaseURL           string
	Username          string
	Password          string
	UseFreeleechToken bool
	// ImdbInTags sends IMDb ids as a taglist filter instead of a catalogue number.
	ImdbInTags bool

	mu      sync.RWMutex
	authKey string
	passKey string
}

// NewSettings normalises the base URL and validates the credentials.
func NewSettings(baseURL, username, password string) (*Settings, error) {
	s := &Settings{
		BaseURL:  baseURL,
		Username: username,
		Password: password,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks that the settings can produce requests and normalises BaseURL.
func (s *Settings) Validate() error {
	raw := strings.TrimSpace(s.BaseURL)
	if raw == "" {
		return fmt.Errorf("base url is required")
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("base url must use http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("base url is missing a host")
	}

	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	s.BaseURL = raw

	if strings.TrimSpace(s.Username) == "" {
		return fmt.Errorf("username is required")
	}
	if s.Password == "" {
		return fmt.Errorf("password is required")
	}

	return nil
}

func (s *Settings) LoginURL() string {
	return s.BaseURL + "login.php"
}

func (s *Settings) APIURL() string {
	return s.BaseURL + "ajax.php"
}

// DetailsURL returns the torrent details page for a torrent id.
func (s *Settings) DetailsURL(torrentID int) string {
	return s.BaseURL + "torrents.php?torrentid=" + strconv.Itoa(torrentID)
}

// DownloadURL returns the .torrent download link for a torrent id. The
// authkey and torrent_pass parameters are only present once a session has
// been verified.
func (s *Settings) DownloadURL(torrentID int) string {
	token := "0"
	if s.UseFreeleechToken {
		token = "1"
	}

	link := s.BaseURL + "torrents.php?action=download&usetoken=" + token + "&id=" + strconv.Itoa(torrentID)

	authKey, passKey := s.Keys()
	if authKey != "" && passKey != "" {
		link += "&authkey=" + url.QueryEscape(authKey) + "&torrent_pass=" + url.QueryEscape(passKey)
	}

	return link
}

// Keys returns the auth key and pass key from the last successful verification.
func (s *Settings) Keys() (authKey, passKey string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authKey, s.passKey
}

func (s *Settings) setKeys(authKey, passKey string) {
	s.mu.Lock()
	s.authKey = authKey
	s.passKey = passKey
	s.mu.Unlock()
}
