// Package gallery holds the home-page view logic: search, sort and lightbox
// navigation as a pure reducer over State.
package gallery

import (
	"sort"
	"strings"
	"time"

	"photo-gallery/internal/models"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey selects the ordering of the view.
type SortKey string

const (
	SortNone  SortKey = ""
	SortDate  SortKey = "date"
	SortTitle SortKey = "title"
)

// ParseSortKey maps a sort selector value to a key; unknown values mean no sort.
func ParseSortKey(s string) SortKey {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case SortDate:
		return SortDate
	case SortTitle:
		return SortTitle
	}
	return SortNone
}

// Filter keeps the photos whose lowercased title contains the lowercased term.
// An empty term keeps everything. The result never aliases photos.
func Filter(photos []models.Photo, term string) []models.Photo {
	out := make([]models.Photo, 0, len(photos))
	term = strings.ToLower(term)
	for _, p := range photos {
		if term == "" || strings.Contains(strings.ToLower(p.Title), term) {
			out = append(out, p)
		}
	}
	return out
}

// Sort orders photos in place.
//
// SortDate is newest first; dates ParseDate cannot read go after every dated
// photo and keep their relative order. SortTitle is ascending under the
// collation of locale and stable. SortNone leaves insertion order.
func Sort(photos []models.Photo, key SortKey, locale language.Tag) {
	switch key {
	case SortDate:
		sortByDate(photos)
	case SortTitle:
		sortByTitle(photos, locale)
	}
}

func sortByDate(photos []models.Photo) {
	type dated struct {
		photo models.Photo
		at    time.Time
		ok    bool
	}
	keyed := make([]dated, len(photos))
	for i, p := range photos {
		t, ok := models.ParseDate(p.Date)
		keyed[i] = dated{photo: p, at: t, ok: ok}
	}
	sort.SliceStable(keyed, func(i, j int) bool {
		a, b := keyed[i], keyed[j]
		if a.ok != b.ok {
			return a.ok
		}
		return a.ok && a.at.After(b.at)
	})
	for i := range keyed {
		photos[i] = keyed[i].photo
	}
}

func sortByTitle(photos []models.Photo, locale language.Tag) {
	// A Collator is not safe for concurrent use; build one per sort.
	c := collate.New(locale)
	sort.SliceStable(photos, func(i, j int) bool {
		return c.CompareString(photos[i].Title, photos[j].Title) < 0
	})
}
