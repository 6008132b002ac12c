// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenInMemory(t *testing.T) {
	db, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var name string
	err = db.QueryRowContext(context.Background(),
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'indexer_cookies'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "indexer_cookies", name)
}

func TestOpenFileIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "gazelle.db")

	db, err := Open(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, path, db.Path())

	_, err = db.ExecContext(ctx,
		`INSERT INTO indexer_cookies (indexer, cookies_json, updated_at) VALUES ('ops', '{}', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var version, rows int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_migrations`).Scan(&version))
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM indexer_cookies`).Scan(&rows))
	assert.Equal(t, len(migrations), version)
	assert.Equal(t, 1, rows)
}
