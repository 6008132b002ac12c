// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package gazelle

import (
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
)

// QueryParameters is an ordered list of key=value fragments.
type QueryParameters struct {
	fragments []queryFragment
}

type queryFragment struct {
	key   string
	value string
}

// Add appends a fragment. Keys may repeat.
func (p *QueryParameters) Add(key, value string) {
	p.fragments = append(p.fragments, queryFragment{key: key, value: value})
}

func (p QueryParameters) Len() int {
	return len(p.fragments)
}

// Values returns every value recorded for key, in insertion order.
func (p QueryParameters) Values(key string) []string {
	var values []string
	for _, f := range p.fragments {
		if f.key == key {
			values = append(values, f.value)
		}
	}
	return values
}

// Has reports whether at least one fragment uses key.
func (p QueryParameters) Has(key string) bool {
	for _, f := range p.fragments {
		if f.key == key {
			return true
		}
	}
	return false
}

// String renders the raw fragments as "&k=v&k=v", without escaping.
func (p QueryParameters) String() string {
	var b strings.Builder
	for _, f := range p.fragments {
		b.WriteByte('&')
		b.WriteString(f.key)
		b.WriteByte('=')
		b.WriteString(f.value)
	}
	return b.String()
}

// Encode renders the fragments in order like String, with query-escaped values.
func (p QueryParameters) Encode() string {
	var b strings.Builder
	for _, f := range p.fragments {
		b.WriteByte('&')
		b.WriteString(f.key)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(f.value))
	}
	return b.String()
}

// ParameterBuilder turns search criteria into ajax.php browse parameters.
type ParameterBuilder struct {
	settings   *Settings
	categories CategoryMapper
	searchTerm func(string) string
}

type ParameterBuilderOption func(*ParameterBuilder)

// WithSearchTermFunc installs a hook that rewrites the search term before use.
func WithSearchTermFunc(fn func(string) string) ParameterBuilderOption {
	return func(b *ParameterBuilder) {
		if fn != nil {
			b.searchTerm = fn
		}
	}
}

func NewParameterBuilder(settings *Settings, categories CategoryMapper, opts ...ParameterBuilderOption) *ParameterBuilder {
	b := &ParameterBuilder{
		settings:   settings,
		categories: categories,
		searchTerm: func(term string) string { return term },
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build maps criteria to query parameters. It never touches the network.
func (b *ParameterBuilder) Build(criteria SearchCriteria) (QueryParameters, error) {
	if criteria == nil {
		return b.basic(BaseCriteria{}), nil
	}

	switch c := criteria.(type) {
	case MovieSearchCriteria:
		params := b.basic(c.BaseCriteria)
		b.addImdb(&params, c.ImdbID)
		return params, nil
	case TvSearchCriteria:
		params := b.basic(c.BaseCriteria)
		b.addImdb(&params, c.ImdbID)
		return params, nil
	case MusicSearchCriteria:
		params := b.basic(c.BaseCriteria)
		if c.Artist != "" {
			params.Add("artistname", c.Artist)
		}
		if c.Label != "" {
			params.Add("recordlabel", c.Label)
		}
		if c.Album != "" {
			params.Add("groupname", c.Album)
		}
		return params, nil
	case BookSearchCriteria:
		return QueryParameters{}, &UnsupportedCriteriaError{Kind: c.Kind()}
	case BasicSearchCriteria:
		return b.basic(c.BaseCriteria), nil
	default:
		return QueryParameters{}, &UnsupportedCriteriaError{Kind: criteria.Kind()}
	}
}

func (b *ParameterBuilder) basic(base BaseCriteria) QueryParameters {
	var params QueryParameters
	params.Add("action", "browse")
	params.Add("order_by", "time")
	params.Add("order_way", "desc")

	term := b.searchTerm(base.SearchTerm)
	if strings.TrimSpace(term) != "" {
		params.Add("searchstr", term)
	}

	if base.Categories != nil && b.categories != nil {
		for _, cat := range b.categories.MapCategories(base.Categories) {
			params.Add("filter_cat["+cat+"]", "1")
		}
	}

	return params
}

func (b *ParameterBuilder) addImdb(params *QueryParameters, imdbID string) {
	if imdbID == "" {
		return
	}

	key := "cataloguenumber"
	if b.settings != nil && b.settings.ImdbInTags {
		key = "taglist"
	}
	params.Add(key, imdbID)

	log.Trace().
		Str("imdb_id", imdbID).
		Str("param", key).
		Msg("Adding IMDb ID parameter to gazelle search")
}
