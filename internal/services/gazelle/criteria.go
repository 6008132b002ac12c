// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package gazelle

import "fmt"

// CriteriaKind names the variant of a SearchCriteria value.
type CriteriaKind string

const (
	CriteriaMovie CriteriaKind = "movie"
	CriteriaTv    CriteriaKind = "tv"
	CriteriaMusic CriteriaKind = "music"
	CriteriaBook  CriteriaKind = "book"
	CriteriaBasic CriteriaKind = "basic"
)

// ParseCriteriaKind maps a user supplied search type to a CriteriaKind.
func ParseCriteriaKind(value string) (CriteriaKind, error) {
	switch CriteriaKind(value) {
	case CriteriaMovie, CriteriaTv, CriteriaMusic, CriteriaBook, CriteriaBasic:
		return CriteriaKind(value), nil
	case "", "search":
		return CriteriaBasic, nil
	case "tvsearch":
		return CriteriaTv, nil
	default:
		return "", fmt.Errorf("unknown search type %q", value)
	}
}

// SearchCriteria is one of MovieSearchCriteria, TvSearchCriteria,
// MusicSearchCriteria, BookSearchCriteria or BasicSearchCriteria.
type SearchCriteria interface {
	Kind() CriteriaKind
	Base() BaseCriteria
	searchCriteria()
}

// BaseCriteria carries the fields shared by every search variant.
// Categories holds Torznab category ids.
type BaseCriteria struct {
	SearchTerm string `json:"searchTerm,omitempty"`
	Categories []int  `json:"categories,omitempty"`
}

func (b BaseCriteria) Base() BaseCriteria { return b }

func (BaseCriteria) searchCriteria() {}

type MovieSearchCriteria struct {
	BaseCriteria
	ImdbID string `json:"imdbId,omitempty"`
}

func (MovieSearchCriteria) Kind() CriteriaKind { return CriteriaMovie }

type TvSearchCriteria struct {
	BaseCriteria
	ImdbID string `json:"imdbId,omitempty"`
}

func (TvSearchCriteria) Kind() CriteriaKind { return CriteriaTv }

type MusicSearchCriteria struct {
	BaseCriteria
	Artist string `json:"artist,omitempty"`
	Label  string `json:"label,omitempty"`
	Album  string `json:"album,omitempty"`
}

func (MusicSearchCriteria) Kind() CriteriaKind { return CriteriaMusic }

type BookSearchCriteria struct {
	BaseCriteria
	Author string `json:"author,omitempty"`
	Title  string `json:"title,omitempty"`
}

func (BookSearchCriteria) Kind() CriteriaKind { return CriteriaBook }

type BasicSearchCriteria struct {
	BaseCriteria
}

func (BasicSearchCriteria) Kind() CriteriaKind { return CriteriaBasic }
