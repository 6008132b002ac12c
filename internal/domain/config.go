// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

type Config struct {
	Version string `toml:"-" mapstructure:"-"`

	BaseURL           string `toml:"baseUrl" mapstructure:"baseUrl"`
	Username          string `toml:"username" mapstructure:"username"`
	Password          string `toml:"password" mapstructure:"password"`
	ImdbInTags        bool   `toml:"imdbInTags" mapstructure:"imdbInTags"`
	UseFreeleechToken bool   `toml:"useFreeleechToken" mapstructure:"useFreeleechToken"`
	IndexerName       string `toml:"indexerName" mapstructure:"indexerName"`
	// RequestTimeout is the browse request timeout in seconds.
	RequestTimeout int `toml:"requestTimeout" mapstructure:"requestTimeout"`

	LogLevel      string `toml:"logLevel" mapstructure:"logLevel"`
	LogPath       string `toml:"logPath" mapstructure:"logPath"`
	LogMaxSize    int    `toml:"logMaxSize" mapstructure:"logMaxSize"`
	LogMaxBackups int    `toml:"logMaxBackups" mapstructure:"logMaxBackups"`
	DataDir       string `toml:"dataDir" mapstructure:"dataDir"`
}
