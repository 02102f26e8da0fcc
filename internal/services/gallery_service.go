package services

import (
	"context"

	"photo-gallery/internal/gallery"

	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// GalleryQuery is the home page's search, sort and open photo.
type GalleryQuery struct {
	Search  string
	Sort    gallery.SortKey
	PhotoID *int64
}

// GalleryService loads the published list for each page view and replays the
// query against the gallery reducer.
type GalleryService struct {
	source PhotoSource
	locale language.Tag
	logger *zap.Logger
}

// NewGalleryService parses locale as a BCP 47 tag, falling back to English.
func NewGalleryService(source PhotoSource, locale string, logger *zap.Logger) *GalleryService {
	logger = logger.Named("gallery")
	tag, err := language.Parse(locale)
	if err != nil {
		logger.Warn("Unknown gallery locale, using en", zap.String("locale", locale), zap.Error(err))
		tag = language.English
	}
	return &GalleryService{source: source, locale: tag, logger: logger}
}

func (s *GalleryService) Locale() language.Tag { return s.locale }

// View fetches the list and applies q in the order a visitor would.
func (s *GalleryService) View(ctx context.Context, q GalleryQuery) gallery.State {
	st := gallery.New(s.source.Fetch(ctx), s.locale)
	if q.Search != "" {
		st = gallery.Reduce(st, gallery.SearchChanged{Term: q.Search})
	}
	if q.Sort != gallery.SortNone {
		st = gallery.Reduce(st, gallery.SortChanged{Key: q.Sort})
	}
	if q.PhotoID != nil {
		st = gallery.Reduce(st, gallery.PhotoOpened{ID: *q.PhotoID})
	}
	return st
}
