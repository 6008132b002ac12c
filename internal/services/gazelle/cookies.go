// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package gazelle

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"
)

// CookieSet maps cookie names to values for one tracker session.
type CookieSet map[string]string

// Clone returns an independent copy, or nil for an empty set.
func (c CookieSet) Clone() CookieSet {
	if len(c) == 0 {
		return nil
	}
	out := make(CookieSet, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Names returns the cookie names in sorted order.
func (c CookieSet) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply attaches every cookie to req in name order.
func (c CookieSet) Apply(req *http.Request) {
	for _, name := range c.Names() {
		req.AddCookie(&http.Cookie{Name: name, Value: c[name]})
	}
}

func cookiesFromResponse(resp *http.Response) CookieSet {
	cookies := make(CookieSet)
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "" {
			continue
		}
		// Servers expire cookies by re-sending them with MaxAge < 0.
		if cookie.MaxAge < 0 {
			delete(cookies, cookie.Name)
			continue
		}
		cookies[cookie.Name] = cookie.Value
	}
	return cookies
}

// CookieStore persists the session cookies of one indexer. Implementations
// must serialize their own reads and writes. A nil cookie set clears the store.
type CookieStore interface {
	Get(ctx context.Context) (CookieSet, error)
	Set(ctx context.Context, cookies CookieSet, expiresAt *time.Time) error
}

// MemoryCookieStore keeps cookies in process memory.
type MemoryCookieStore struct {
	mu        sync.Mutex
	cookies   CookieSet
	expiresAt *time.Time
}

var _ CookieStore = (*MemoryCookieStore)(nil)

func NewMemoryCookieStore() *MemoryCookieStore {
	return &MemoryCookieStore{}
}

func (s *MemoryCookieStore) Get(_ context.Context) (CookieSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cookies.Clone(), nil
}

func (s *MemoryCookieStore) Set(_ context.Context, cookies CookieSet, expiresAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cookies = cookies.Clone()
	if s.cookies == nil || expiresAt == nil {
		s.expiresAt = nil
		return nil
	}

	exp := *expiresAt
	s.expiresAt = &exp
	return nil
}

// ExpiresAt returns the advisory expiry recorded with the current cookies.
func (s *MemoryCookieStore) ExpiresAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.expiresAt == nil {
		return nil
	}
	exp := *s.expiresAt
	return &exp
}
