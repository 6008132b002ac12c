// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/autobrr/gazelle/internal/domain"
	"github.com/autobrr/gazelle/internal/models"
	"github.com/autobrr/gazelle/internal/services/gazelle"
)

type outputFormat string

const (
	outputText outputFormat = "text"
	outputJSON outputFormat = "json"
	outputYAML outputFormat = "yaml"
)

func parseOutputFormat(s string) (outputFormat, error) {
	switch f := outputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case outputText, outputJSON, outputYAML:
		return f, nil
	case "yml":
		return outputYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
	}
}

// buildCriteria maps CLI flags onto one criteria variant. Fields that do not
// belong to the chosen variant are rejected rather than silently dropped.
func buildCriteria(kind string, base gazelle.BaseCriteria, imdbID, artist, label, album string) (gazelle.SearchCriteria, error) {
	k, err := gazelle.ParseCriteriaKind(kind)
	if err != nil {
		return nil, err
	}

	if imdbID != "" && k != gazelle.CriteriaMovie && k != gazelle.CriteriaTv {
		return nil, fmt.Errorf("--imdb only applies to movie and tv searches")
	}
	if (artist != "" || label != "" || album != "") && k != gazelle.CriteriaMusic {
		return nil, fmt.Errorf("--artist, --label and --album only apply to music searches")
	}

	switch k {
	case gazelle.CriteriaMovie:
		return gazelle.MovieSearchCriteria{BaseCriteria: base, ImdbID: imdbID}, nil
	case gazelle.CriteriaTv:
		return gazelle.TvSearchCriteria{BaseCriteria: base, ImdbID: imdbID}, nil
	case gazelle.CriteriaMusic:
		return gazelle.MusicSearchCriteria{BaseCriteria: base, Artist: artist, Label: label, Album: album}, nil
	case gazelle.CriteriaBook:
		return gazelle.BookSearchCriteria{BaseCriteria: base}, nil
	default:
		return gazelle.BasicSearchCriteria{BaseCriteria: base}, nil
	}
}

type requestView struct {
	URL     string            `json:"url" yaml:"url"`
	Method  string            `json:"method" yaml:"method"`
	Accept  string            `json:"accept" yaml:"accept"`
	Cookies map[string]string `json:"cookies,omitempty" yaml:"cookies,omitempty"`
	Timeout string            `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

type pageView struct {
	Request     requestView `json:"request" yaml:"request"`
	StatusCode  int         `json:"statusCode" yaml:"statusCode"`
	ContentType string      `json:"contentType" yaml:"contentType"`
	Body        string      `json:"body" yaml:"body"`
}

type sessionView struct {
	Indexer   string     `json:"indexer" yaml:"indexer"`
	Cookies   []string   `json:"cookies" yaml:"cookies"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty" yaml:"expiresAt,omitempty"`
	Expired   bool       `json:"expired" yaml:"expired"`
	UpdatedAt time.Time  `json:"updatedAt" yaml:"updatedAt"`
}

func newRequestView(desc gazelle.RequestDescriptor, showCookies bool) requestView {
	view := requestView{
		URL:    desc.URL,
		Method: desc.Method,
		Accept: desc.Accept,
	}
	if len(desc.Cookies) > 0 {
		view.Cookies = make(map[string]string, len(desc.Cookies))
		for name, value := range desc.Cookies {
			if !showCookies {
				value = domain.RedactString(value)
			}
			view.Cookies[name] = value
		}
	}
	if desc.Timeout > 0 {
		view.Timeout = desc.Timeout.String()
	}
	return view
}

func renderChain(w io.Writer, format outputFormat, chain gazelle.RequestChain, showCookies bool) error {
	views := make([]requestView, 0, len(chain))
	for _, desc := range chain {
		views = append(views, newRequestView(desc, showCookies))
	}

	if format != outputText {
		return encode(w, format, views)
	}

	for _, v := range views {
		fmt.Fprintf(w, "%s %s\n", v.Method, v.URL)
		fmt.Fprintf(w, "  Accept: %s\n", v.Accept)
		for _, name := range gazelle.CookieSet(v.Cookies).Names() {
			fmt.Fprintf(w, "  Cookie: %s=%s\n", name, v.Cookies[name])
		}
	}
	return nil
}

func renderPages(w io.Writer, format outputFormat, pages []gazelle.Page, showCookies bool) error {
	views := make([]pageView, 0, len(pages))
	for _, page := range pages {
		views = append(views, pageView{
			Request:     newRequestView(page.Request, showCookies),
			StatusCode:  page.StatusCode,
			ContentType: page.ContentType,
			Body:        string(page.Body),
		})
	}

	if format != outputText {
		return encode(w, format, views)
	}

	for _, v := range views {
		fmt.Fprintf(w, "%s %s -> %d (%s, %d bytes)\n", v.Request.Method, v.Request.URL, v.StatusCode, v.ContentType, len(v.Body))
		fmt.Fprintln(w, v.Body)
	}
	return nil
}

func renderStatus(w io.Writer, format outputFormat, records []*models.IndexerCookies, now time.Time) error {
	views := make([]sessionView, 0, len(records))
	for _, r := range records {
		views = append(views, sessionView{
			Indexer:   r.Indexer,
			Cookies:   r.Cookies.Names(),
			ExpiresAt: r.ExpiresAt,
			Expired:   r.Expired(now),
			UpdatedAt: r.UpdatedAt,
		})
	}

	if format != outputText {
		return encode(w, format, views)
	}

	if len(views) == 0 {
		fmt.Fprintln(w, "No cached sessions")
		return nil
	}

	for _, v := range views {
		expires := "never"
		if v.ExpiresAt != nil {
			expires = v.ExpiresAt.Format(time.RFC3339)
		}
		if v.Expired {
			expires += " (expired)"
		}
		fmt.Fprintf(w, "%s\tcookies: %s\texpires: %s\tupdated: %s\n",
			v.Indexer, strings.Join(v.Cookies, ","), expires, v.UpdatedAt.Format(time.RFC3339))
	}
	return nil
}

func encode(w io.Writer, format outputFormat, v any) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}
