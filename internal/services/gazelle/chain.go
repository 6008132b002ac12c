// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package gazelle

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/gazelle/internal/buildinfo"
)

// Authenticator yields a verified cookie set. *SessionManager implements it.
type Authenticator interface {
	Authenticate(ctx context.Context) (CookieSet, error)
}

// RequestDescriptor describes one outbound tracker request. Descriptors are
// built fresh for every search and are not modified afterwards.
type RequestDescriptor struct {
	URL     string        `json:"url" yaml:"url"`
	Method  string        `json:"method" yaml:"method"`
	Accept  string        `json:"accept" yaml:"accept"`
	Cookies CookieSet     `json:"cookies,omitempty" yaml:"cookies,omitempty"`
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// HTTPRequest materialises the descriptor. The descriptor's timeout, when
// set, is applied to the returned cancel func's context.
func (d RequestDescriptor) HTTPRequest(ctx context.Context) (*http.Request, context.CancelFunc, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	cancel := context.CancelFunc(func() {})
	if d.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
	}

	req, err := http.NewRequestWithContext(ctx, d.Method, d.URL, nil)
	if err != nil {
		cancel()
		return nil, nil, errors.Wrap(err, "build gazelle search request")
	}
	if d.Accept != "" {
		req.Header.Set("Accept", d.Accept)
	}
	req.Header.Set("User-Agent", buildinfo.UserAgent)
	d.Cookies.Apply(req)

	return req, cancel, nil
}

// RequestChain is the ordered list of requests making up one logical search.
type RequestChain []RequestDescriptor

// RequestGenerator builds authenticated browse requests for a Gazelle tracker.
type RequestGenerator struct {
	settings *Settings
	auth     Authenticator
	params   *ParameterBuilder
}

func NewRequestGenerator(settings *Settings, auth Authenticator, params *ParameterBuilder) *RequestGenerator {
	return &RequestGenerator{
		settings: settings,
		auth:     auth,
		params:   params,
	}
}

// GetRecentRequests returns the chain for the latest uploads feed.
func (g *RequestGenerator) GetRecentRequests(ctx context.Context) (RequestChain, error) {
	return g.BuildChain(ctx, nil)
}

// GetSearchRequests returns the chain for criteria. Unsupported criteria fail
// before any network call is made.
func (g *RequestGenerator) GetSearchRequests(ctx context.Context, criteria SearchCriteria) (RequestChain, error) {
	params, err := g.params.Build(criteria)
	if err != nil {
		return nil, err
	}
	return g.BuildChain(ctx, &params)
}

// BuildChain authenticates and assembles the request chain for params.
// A nil params produces the bare browse request.
func (g *RequestGenerator) BuildChain(ctx context.Context, params *QueryParameters) (RequestChain, error) {
	cookies, err := g.auth.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	target := g.settings.APIURL() + "?action=browse"
	if params != nil {
		target += params.Encode()
	}

	log.Trace().Str("url", target).Int("cookies", len(cookies)).Msg("Built gazelle browse request")

	return RequestChain{{
		URL:     target,
		Method:  http.MethodGet,
		Accept:  acceptJSON,
		Cookies: cookies.Clone(),
	}}, nil
}
