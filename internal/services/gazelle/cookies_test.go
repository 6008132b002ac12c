// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package gazelle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookieSet(t *testing.T) {
	var empty CookieSet
	assert.Nil(t, empty.Clone())
	assert.Empty(t, empty.Names())

	c := CookieSet{"b": "2", "a": "1"}
	clone := c.Clone()
	clone["a"] = "changed"
	assert.Equal(t, "1", c["a"])
	assert.Equal(t, []string{"a", "b"}, c.Names())
}

func TestCookiesFromResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	http.SetCookie(rec, &http.Cookie{Name: "session", Value: "abc"})
	http.SetCookie(rec, &http.Cookie{Name: "keeplogged", Value: "1"})
	http.SetCookie(rec, &http.Cookie{Name: "old", Value: "x", MaxAge: -1})

	cookies := cookiesFromResponse(rec.Result())
	assert.Equal(t, CookieSet{"session": "abc", "keeplogged": "1"}, cookies)
}

func TestMemoryCookieStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryCookieStore()

	got, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	expiresAt := time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC)
	original := CookieSet{"session": "abc"}
	require.NoError(t, store.Set(ctx, original, &expiresAt))

	original["session"] = "mutated"
	got, err = store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, CookieSet{"session": "abc"}, got)
	require.NotNil(t, store.ExpiresAt())
	assert.Equal(t, expiresAt, *store.ExpiresAt())

	require.NoError(t, store.Set(ctx, nil, &expiresAt))
	got, err = store.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Nil(t, store.ExpiresAt())
}
