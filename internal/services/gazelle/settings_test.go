// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package gazelle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSettings_Validation(t *testing.T) {
	tests := []struct {
		name     string
		baseURL  string
		username string
		password string
		wantErr  string
		wantBase string
	}{
		{name: "adds trailing slash", baseURL: "https://tracker.example", username: "u", password: "p", wantBase: "https://tracker.example/"},
		{name: "keeps path", baseURL: " https://tracker.example/gazelle/ ", username: "u", password: "p", wantBase: "https://tracker.example/gazelle/"},
		{name: "missing base url", baseURL: "", username: "u", password: "p", wantErr: "base url is required"},
		{name: "bad scheme", baseURL: "ftp://tracker.example", username: "u", password: "p", wantErr: `base url must use http or https, got "ftp"`},
		{name: "missing host", baseURL: "https://", username: "u", password: "p", wantErr: "base url is missing a host"},
		{name: "missing username", baseURL: "https://tracker.example", username: " ", password: "p", wantErr: "username is required"},
		{name: "missing password", baseURL: "https://tracker.example", username: "u", password: "", wantErr: "password is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSettings(tt.baseURL, tt.username, tt.password)
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBase, s.BaseURL)
		})
	}
}

func TestSettings_URLs(t *testing.T) {
	s, err := NewSettings("https://tracker.example", "u", "p")
	require.NoError(t, err)

	assert.Equal(t, "https://tracker.example/login.php", s.LoginURL())
	assert.Equal(t, "https://tracker.example/ajax.php", s.APIURL())
	assert.Equal(t, "https://tracker.example/torrents.php?torrentid=99", s.DetailsURL(99))
	assert.Equal(t, "https://tracker.example/torrents.php?action=download&usetoken=0&id=99", s.DownloadURL(99))

	s.UseFreeleechToken = true
	s.setKeys("auth key", "pass")
	assert.Equal(t, "https://tracker.example/torrents.php?action=download&usetoken=1&id=99&authkey=auth+key&torrent_pass=pass", s.DownloadURL(99))
}
