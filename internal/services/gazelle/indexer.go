// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package gazelle

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const maxPageBytes int64 = 16 << 20 // 16 MiB safety limit for browse responses

// PageError reports a browse request answered with a non-2xx status.
type PageError struct {
	StatusCode int
	URL        string
}

func (e *PageError) Error() string {
	return fmt.Sprintf("gazelle browse request to %s returned status %d", e.URL, e.StatusCode)
}

func (e *PageError) Is(target error) bool {
	_, ok := target.(*PageError)
	return ok
}

// Page is the raw response to one request of a chain. The body is not parsed.
type Page struct {
	Request     RequestDescriptor
	StatusCode  int
	ContentType string
	Body        []byte
}

// Indexer ties a session, a request generator and a transport together for
// one tracker. It retries a search once when the session was rejected.
type Indexer struct {
	name      string
	settings  *Settings
	session   *SessionManager
	generator *RequestGenerator
	client    HTTPDoer
	logger    zerolog.Logger

	authAttempts uint
}

// IndexerConfig wires an Indexer. Store, Client and Categories are optional.
type IndexerConfig struct {
	Name       string
	Settings   *Settings
	Store      CookieStore
	Client     HTTPDoer
	Categories CategoryMapper
	// SearchTerm optionally rewrites search terms before they are sent.
	SearchTerm func(string) string
	// RequestTimeout bounds non-login requests when Client is nil.
	RequestTimeout time.Duration
}

func NewIndexer(cfg IndexerConfig) (*Indexer, error) {
	if cfg.Settings == nil {
		return nil, fmt.Errorf("gazelle settings are required")
	}
	if err := cfg.Settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid gazelle settings: %w", err)
	}

	client := cfg.Client
	if client == nil {
		timeout := cfg.RequestTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = NewHTTPClient(timeout)
	}

	categories := cfg.Categories
	if categories == nil {
		categories = DefaultCategories()
	}

	name := cfg.Name
	if name == "" {
		name = trackerHost(cfg.Settings.BaseURL)
	}

	logger := log.Logger.With().Str("module", "gazelle").Str("indexer", name).Logger()

	session := NewSessionManager(cfg.Settings, cfg.Store, client, WithLogger(logger))
	params := NewParameterBuilder(cfg.Settings, categories, WithSearchTermFunc(cfg.SearchTerm))

	return &Indexer{
		name:         name,
		settings:     cfg.Settings,
		session:      session,
		generator:    NewRequestGenerator(cfg.Settings, session, params),
		client:       client,
		logger:       logger,
		authAttempts: 2,
	}, nil
}

func (i *Indexer) Name() string { return i.name }

// Session exposes the indexer's session manager.
func (i *Indexer) Session() *SessionManager { return i.session }

// Generator exposes the indexer's request generator.
func (i *Indexer) Generator() *RequestGenerator { return i.generator }

// DownloadURL returns the download link for a torrent id.
func (i *Indexer) DownloadURL(torrentID int) string {
	return i.settings.DownloadURL(torrentID)
}

// Search builds the chain for criteria and fetches every page.
func (i *Indexer) Search(ctx context.Context, criteria SearchCriteria) ([]Page, error) {
	return i.run(ctx, func(ctx context.Context) (RequestChain, error) {
		return i.generator.GetSearchRequests(ctx, criteria)
	})
}

// Recent fetches the latest uploads.
func (i *Indexer) Recent(ctx context.Context) ([]Page, error) {
	return i.run(ctx, i.generator.GetRecentRequests)
}

// Close tears down the session manager.
func (i *Indexer) Close() error {
	return i.session.Close()
}

func (i *Indexer) run(ctx context.Context, build func(context.Context) (RequestChain, error)) ([]Page, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var pages []Page
	err := retry.Do(
		func() error {
			chain, err := build(ctx)
			if err != nil {
				return err
			}

			fetched, err := i.fetchChain(ctx, chain)
			if err != nil {
				return err
			}
			pages = fetched
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(i.authAttempts),
		retry.Delay(0),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(IsAuthenticationError),
		retry.OnRetry(func(n uint, err error) {
			i.logger.Debug().Err(err).Uint("attempt", n+1).Msg("Gazelle session rejected, retrying search with a fresh login")
		}),
	)
	if err != nil {
		return nil, err
	}

	return pages, nil
}

func (i *Indexer) fetchChain(ctx context.Context, chain RequestChain) ([]Page, error) {
	pages := make([]Page, 0, len(chain))
	for _, desc := range chain {
		page, err := i.fetch(ctx, desc)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, nil
}

func (i *Indexer) fetch(ctx context.Context, desc RequestDescriptor) (Page, error) {
	req, cancel, err := desc.HTTPRequest(ctx)
	if err != nil {
		return Page{}, err
	}
	defer cancel()

	start := time.Now()
	resp, err := i.client.Do(req)
	if err != nil {
		return Page{}, errors.Wrap(err, "gazelle browse request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return Page{}, &PageError{StatusCode: resp.StatusCode, URL: desc.URL}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes+1))
	if err != nil {
		return Page{}, errors.Wrap(err, "read gazelle browse response")
	}
	if int64(len(body)) > maxPageBytes {
		return Page{}, fmt.Errorf("gazelle browse response exceeded %d bytes limit", maxPageBytes)
	}

	i.logger.Debug().
		Int("status_code", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("elapsed", time.Since(start)).
		Msg("Fetched gazelle browse page")

	return Page{
		Request:     desc,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
