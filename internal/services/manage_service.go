package services

import (
	"context"
	"errors"
	"io"
	"time"

	"photo-gallery/internal/db"
	"photo-gallery/internal/hosting"
	"photo-gallery/internal/manage"
	"photo-gallery/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidMove  = errors.New("move needs one of to, before or pointer_y")
	ErrUploadFailed = errors.New("upload failed")
	ErrNoJournal    = errors.New("upload journal is disabled")
)

// ImageHost is the upload target; *hosting.Client satisfies it.
type ImageHost interface {
	Configured() bool
	Upload(ctx context.Context, filename string, file io.Reader) (*hosting.Result, error)
}

// PhotoSource supplies the published list; *loader.Loader satisfies it.
type PhotoSource interface {
	Fetch(ctx context.Context) []models.Photo
}

// ManageService applies admin actions to the single draft.
type ManageService struct {
	draft   *manage.Controller
	source  PhotoSource
	host    ImageHost
	journal *db.Journal
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string
}

// NewManageService wires the draft to its collaborators. journal may be nil.
func NewManageService(draft *manage.Controller, source PhotoSource, host ImageHost, journal *db.Journal, logger *zap.Logger) *ManageService {
	return &ManageService{
		draft:   draft,
		source:  source,
		host:    host,
		journal: journal,
		logger:  logger.Named("manage"),
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
}

func (s *ManageService) Snapshot() manage.State {
	return s.draft.Snapshot()
}

// Reload replaces the draft with the published list.
func (s *ManageService) Reload(ctx context.Context) manage.State {
	photos := s.source.Fetch(ctx)
	st, _ := s.draft.Dispatch(manage.ListLoaded{Photos: photos})
	s.logger.Info("Draft reloaded", zap.Int("count", len(st.Photos)))
	return st
}

// Delete removes id. Unknown ids leave the draft as it was.
func (s *ManageService) Delete(id int64) manage.State {
	st, _ := s.draft.Dispatch(manage.PhotoDeleted{ID: id})
	return st
}

// Move resolves req to a drop position and moves id there.
func (s *ManageService) Move(id int64, req models.MoveRequest) (manage.State, error) {
	var e manage.Event
	switch {
	case req.To != nil:
		e = manage.PhotoMoved{ID: id, To: *req.To}
	case req.Before != nil:
		e = manage.PhotoInsertedBefore{ID: id, Before: req.Before}
	case req.PointerY != nil:
		e = manage.PhotoInsertedBefore{ID: id, Before: manage.DropTarget(req.Siblings, *req.PointerY)}
	default:
		return s.draft.Snapshot(), ErrInvalidMove
	}
	return s.draft.Dispatch(e)
}

func (s *ManageService) Reorder(ids []int64) (manage.State, error) {
	return s.draft.Dispatch(manage.OrderRewritten{IDs: ids})
}

// Export returns the draft as gallery-data.json content. Validation problems
// are logged; they never block the download.
func (s *ManageService) Export() ([]byte, error) {
	photos := s.draft.Snapshot().Photos
	issues, err := models.Validate(photos)
	for _, is := range issues {
		s.logger.Warn("Export issue", zap.String("issue", is.String()))
	}
	if err != nil {
		s.logger.Warn("Exporting invalid list", zap.Error(err))
	}
	return manage.Export(photos)
}

// Uploads lists recent journal entries, newest first.
func (s *ManageService) Uploads(ctx context.Context, limit int) ([]models.UploadRecord, error) {
	if s.journal == nil {
		return nil, ErrNoJournal
	}
	return s.journal.Recent(ctx, limit)
}

// HostingConfigured reports whether uploads can be attempted.
func (s *ManageService) HostingConfigured() bool {
	return s.host.Configured()
}
