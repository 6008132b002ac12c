// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package gazelle

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthentication matches any *AuthenticationError via errors.Is.
	ErrAuthentication = errors.New("failed to authenticate with gazelle")
	// ErrUnsupportedCriteria matches any *UnsupportedCriteriaError via errors.Is.
	ErrUnsupportedCriteria = errors.New("unsupported search criteria")
	// ErrSessionClosed is returned by a session manager after Close.
	ErrSessionClosed = errors.New("gazelle session is closed")
)

// AuthenticationError reports a failed login or a rejected session.
// The cached cookie set has already been cleared when Cleared is true.
type AuthenticationError struct {
	Reason     string
	StatusCode int
	Cleared    bool
}

func (e *AuthenticationError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s (status %d)", ErrAuthentication, e.Reason, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", ErrAuthentication, e.Reason)
}

func (e *AuthenticationError) Is(target error) bool {
	if target == ErrAuthentication {
		return true
	}
	_, ok := target.(*AuthenticationError)
	return ok
}

// IsAuthenticationError reports whether err is, or wraps, an authentication failure.
func IsAuthenticationError(err error) bool {
	return errors.Is(err, ErrAuthentication)
}

// UnsupportedCriteriaError is returned for criteria the tracker API has no mapping for.
type UnsupportedCriteriaError struct {
	Kind CriteriaKind
}

func (e *UnsupportedCriteriaError) Error() string {
	return fmt.Sprintf("%s: %s searches are not supported", ErrUnsupportedCriteria, e.Kind)
}

func (e *UnsupportedCriteriaError) Is(target error) bool {
	if target == ErrUnsupportedCriteria {
		return true
	}
	_, ok := target.(*UnsupportedCriteriaError)
	return ok
}
