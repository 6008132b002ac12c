// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package gazelle

// Torznab category constants
const (
	CategoryMovies = 2000

	CategoryAudio          = 3000
	CategoryAudioAudiobook = 3030

	CategoryPC = 4000

	CategoryTV = 5000

	CategoryBooks       = 7000
	CategoryBooksEbook  = 7020
	CategoryBooksComics = 7030
)

// CategoryMapper translates Torznab category ids into tracker category ids.
// The result preserves request order and keeps duplicates.
type CategoryMapper interface {
	MapCategories(categories []int) []string
}

// CategoryMapping binds one tracker category to a Torznab category.
type CategoryMapping struct {
	TrackerID   string `json:"trackerId"`
	TorznabID   int    `json:"torznabId"`
	Description string `json:"description,omitempty"`
}

// CategoryMap is an ordered CategoryMapper backed by a static table.
type CategoryMap struct {
	mappings []CategoryMapping
}

var _ CategoryMapper = (*CategoryMap)(nil)

func NewCategoryMap(mappings ...CategoryMapping) *CategoryMap {
	return &CategoryMap{mappings: append([]CategoryMapping(nil), mappings...)}
}

// DefaultCategories returns the category table shared by stock Gazelle trackers.
func DefaultCategories() *CategoryMap {
	return NewCategoryMap(
		CategoryMapping{TrackerID: "1", TorznabID: CategoryAudio, Description: "Music"},
		CategoryMapping{TrackerID: "2", TorznabID: CategoryPC, Description: "Applications"},
		CategoryMapping{TrackerID: "3", TorznabID: CategoryBooks, Description: "E-Books"},
		CategoryMapping{TrackerID: "4", TorznabID: CategoryAudioAudiobook, Description: "Audiobooks"},
		CategoryMapping{TrackerID: "5", TorznabID: CategoryMovies, Description: "E-Learning Videos"},
		CategoryMapping{TrackerID: "6", TorznabID: CategoryTV, Description: "Comedy"},
		CategoryMapping{TrackerID: "7", TorznabID: CategoryBooksComics, Description: "Comics"},
	)
}

// Mappings returns a copy of the mapping table.
func (m *CategoryMap) Mappings() []CategoryMapping {
	return append([]CategoryMapping(nil), m.mappings...)
}

// MapCategories returns, for each requested category in order, the tracker ids
// mapped to it. A requested parent category (e.g. 3000) also matches mappings
// of its subcategories (e.g. 3030).
func (m *CategoryMap) MapCategories(categories []int) []string {
	if len(categories) == 0 {
		return nil
	}

	mapped := make([]string, 0, len(categories))
	for _, requested := range categories {
		for _, mapping := range m.mappings {
			if mapping.TorznabID == requested {
				mapped = append(mapped, mapping.TrackerID)
				continue
			}
			if requested == deriveParentCategory(requested) && deriveParentCategory(mapping.TorznabID) == requested {
				mapped = append(mapped, mapping.TrackerID)
			}
		}
	}

	return mapped
}

func deriveParentCategory(cat int) int {
	if cat < 1000 {
		return cat
	}
	return (cat / 100) * 100
}
