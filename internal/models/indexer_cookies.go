// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/autobrr/gazelle/internal/dbinterface"
	"github.com/autobrr/gazelle/internal/services/gazelle"
)

// IndexerCookies is the persisted session of one indexer.
type IndexerCookies struct {
	Indexer   string            `json:"indexer"`
	Cookies   gazelle.CookieSet `json:"cookies"`
	ExpiresAt *time.Time        `json:"expiresAt,omitempty"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// Expired reports whether the advisory expiry has passed. Expired cookies are
// still returned by the store; the tracker decides whether they are valid.
func (c *IndexerCookies) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(*c.ExpiresAt)
}

// IndexerCookieStore persists session cookies per indexer.
type IndexerCookieStore struct {
	db dbinterface.Querier
	mu sync.Mutex
}

func NewIndexerCookieStore(db dbinterface.Querier) *IndexerCookieStore {
	return &IndexerCookieStore{db: db}
}

// Get returns the stored session for indexer, or nil when none is stored.
func (s *IndexerCookieStore) Get(ctx context.Context, indexer string) (*IndexerCookies, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(ctx, indexer)
}

func (s *IndexerCookieStore) get(ctx context.Context, indexer string) (*IndexerCookies, error) {
	const query = `SELECT indexer, cookies_json, expires_at, updated_at FROM indexer_cookies WHERE indexer = ?`

	var (
		record      IndexerCookies
		cookiesJSON string
		expiresAt   sql.NullString
		updatedAt   string
	)

	err := s.db.QueryRowContext(ctx, query, indexer).Scan(&record.Indexer, &cookiesJSON, &expiresAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "query cookies for indexer %s", indexer)
	}

	if err := json.Unmarshal([]byte(cookiesJSON), &record.Cookies); err != nil {
		return nil, errors.Wrapf(err, "decode cookies for indexer %s", indexer)
	}

	if expiresAt.Valid && expiresAt.String != "" {
		ts, err := time.Parse(time.RFC3339Nano, expiresAt.String)
		if err != nil {
			return nil, errors.Wrapf(err, "parse cookie expiry for indexer %s", indexer)
		}
		record.ExpiresAt = &ts
	}

	record.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return nil, errors.Wrapf(err, "parse cookie update time for indexer %s", indexer)
	}

	return &record, nil
}

// Upsert stores cookies for indexer. An empty cookie set deletes the row.
func (s *IndexerCookieStore) Upsert(ctx context.Context, indexer string, cookies gazelle.CookieSet, expiresAt *time.Time) error {
	if strings.TrimSpace(indexer) == "" {
		return fmt.Errorf("indexer name cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(cookies) == 0 {
		return s.delete(ctx, indexer)
	}

	payload, err := json.Marshal(cookies)
	if err != nil {
		return errors.Wrap(err, "encode cookies")
	}

	var expires sql.NullString
	if expiresAt != nil {
		expires = sql.NullString{String: expiresAt.UTC().Format(time.RFC3339Nano), Valid: true}
	}

	const query = `INSERT INTO indexer_cookies (indexer, cookies_json, expires_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(indexer) DO UPDATE SET
			cookies_json = excluded.cookies_json,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at`

	if _, err := s.db.ExecContext(ctx, query, indexer, string(payload), expires, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return errors.Wrapf(err, "store cookies for indexer %s", indexer)
	}

	return nil
}

// Delete removes the stored session for indexer.
func (s *IndexerCookieStore) Delete(ctx context.Context, indexer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delete(ctx, indexer)
}

func (s *IndexerCookieStore) delete(ctx context.Context, indexer string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM indexer_cookies WHERE indexer = ?`, indexer); err != nil {
		return errors.Wrapf(err, "delete cookies for indexer %s", indexer)
	}
	return nil
}

// List returns every stored session ordered by indexer name.
func (s *IndexerCookieStore) List(ctx context.Context) ([]*IndexerCookies, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `SELECT indexer FROM indexer_cookies ORDER BY indexer`)
	if err != nil {
		return nil, errors.Wrap(err, "list indexer cookies")
	}

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	result := make([]*IndexerCookies, 0, len(names))
	for _, name := range names {
		record, err := s.get(ctx, name)
		if err != nil {
			return nil, err
		}
		if record != nil {
			result = append(result, record)
		}
	}

	return result, nil
}

// ForIndexer returns a gazelle.CookieStore scoped to one indexer.
func (s *IndexerCookieStore) ForIndexer(indexer string) gazelle.CookieStore {
	return &indexerCookieStore{store: s, indexer: indexer}
}

type indexerCookieStore struct {
	store   *IndexerCookieStore
	indexer string
}

func (s *indexerCookieStore) Get(ctx context.Context) (gazelle.CookieSet, error) {
	record, err := s.store.Get(ctx, s.indexer)
	if err != nil || record == nil {
		return nil, err
	}
	return record.Cookies, nil
}

func (s *indexerCookieStore) Set(ctx context.Context, cookies gazelle.CookieSet, expiresAt *time.Time) error {
	return s.store.Upsert(ctx, s.indexer, cookies, expiresAt)
}
