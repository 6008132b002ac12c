// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package gazelle

import (
	"errors"
	"fmt"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestAuthenticationError(t *testing.T) {
	tests := []struct {
		name string
		err  *AuthenticationError
		want string
	}{
		{
			name: "with status",
			err:  &AuthenticationError{Reason: "login rejected", StatusCode: 401},
			want: "failed to authenticate with gazelle: login rejected (status 401)",
		},
		{
			name: "without status",
			err:  &AuthenticationError{Reason: "index response was not valid JSON"},
			want: "failed to authenticate with gazelle: index response was not valid JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.True(t, errors.Is(tt.err, ErrAuthentication))
			assert.True(t, errors.Is(tt.err, &AuthenticationError{}))
			assert.False(t, errors.Is(tt.err, ErrUnsupportedCriteria))
		})
	}
}

func TestIsAuthenticationError_Wrapped(t *testing.T) {
	base := &AuthenticationError{Reason: "index returned status failure"}

	assert.True(t, IsAuthenticationError(fmt.Errorf("search: %w", base)))
	assert.True(t, IsAuthenticationError(pkgerrors.Wrap(base, "search")))
	assert.False(t, IsAuthenticationError(errors.New("connection refused")))
	assert.False(t, IsAuthenticationError(nil))
}

func TestUnsupportedCriteriaError(t *testing.T) {
	err := &UnsupportedCriteriaError{Kind: CriteriaBook}

	assert.Equal(t, "unsupported search criteria: book searches are not supported", err.Error())
	assert.True(t, errors.Is(err, ErrUnsupportedCriteria))
	assert.False(t, errors.Is(err, ErrAuthentication))
}
