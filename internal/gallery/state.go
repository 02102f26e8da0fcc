package gallery

import (
	"photo-gallery/internal/models"

	"golang.org/x/text/language"
)

// State is everything the home page shows. View is derived from All, Search and Sort.
type State struct {
	All      []models.Photo
	View     []models.Photo
	Search   string
	Sort     SortKey
	Lightbox Lightbox
	Locale   language.Tag
}

// Lightbox tracks the open photo by its index in View, not in All.
type Lightbox struct {
	Open  bool
	Index int
}

// Event is a user action on the home page.
type Event interface{ galleryEvent() }

type (
	Loaded         struct{ Photos []models.Photo }
	SearchChanged  struct{ Term string }
	SortChanged    struct{ Key SortKey }
	PhotoOpened    struct{ ID int64 }
	NextPhoto      struct{}
	PrevPhoto      struct{}
	LightboxClosed struct{}
)

func (Loaded) galleryEvent()         {}
func (SearchChanged) galleryEvent()  {}
func (SortChanged) galleryEvent()    {}
func (PhotoOpened) galleryEvent()    {}
func (NextPhoto) galleryEvent()      {}
func (PrevPhoto) galleryEvent()      {}
func (LightboxClosed) galleryEvent() {}

// New returns the state for photos with no search and no sort.
func New(photos []models.Photo, locale language.Tag) State {
	return Reduce(State{Locale: locale}, Loaded{Photos: photos})
}

// Reduce applies e to s and returns the next state. s is not modified.
func Reduce(s State, e Event) State {
	switch e := e.(type) {
	case Loaded:
		s.All = append([]models.Photo(nil), e.Photos...)
		s.View = recompute(s)
	case SearchChanged:
		s.Search = e.Term
		s.View = recompute(s)
	case SortChanged:
		s.Sort = e.Key
		s.View = recompute(s)
	case PhotoOpened:
		for i, p := range s.View {
			if p.ID == e.ID {
				s.Lightbox = Lightbox{Open: true, Index: i}
				break
			}
		}
	case NextPhoto:
		s.Lightbox = step(s, 1)
	case PrevPhoto:
		s.Lightbox = step(s, -1)
	case LightboxClosed:
		s.Lightbox.Open = false
	}
	return s
}

func recompute(s State) []models.Photo {
	view := Filter(s.All, s.Search)
	Sort(view, s.Sort, s.Locale)
	return view
}

// step moves circularly within View. A stale index is reduced modulo the view
// length rather than trusted.
func step(s State, delta int) Lightbox {
	n := len(s.View)
	if n == 0 {
		return s.Lightbox
	}
	i := ((s.Lightbox.Index+delta)%n + n) % n
	return Lightbox{Open: s.Lightbox.Open, Index: i}
}

// Current returns the photo shown in the lightbox.
func (s State) Current() (models.Photo, bool) {
	if !s.Lightbox.Open || s.Lightbox.Index < 0 || s.Lightbox.Index >= len(s.View) {
		return models.Photo{}, false
	}
	return s.View[s.Lightbox.Index], true
}

// Neighbours returns the photos Prev and Next would show.
func (s State) Neighbours() (prev, next models.Photo, ok bool) {
	if _, open := s.Current(); !open {
		return models.Photo{}, models.Photo{}, false
	}
	p, _ := Reduce(s, PrevPhoto{}).Current()
	n, _ := Reduce(s, NextPhoto{}).Current()
	return p, n, true
}
