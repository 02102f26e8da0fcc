// Package manage holds the admin editor: an in-memory draft of the photo list
// and the upload status, changed only through Reduce.
package manage

import (
	"errors"

	"photo-gallery/internal/models"
)

var (
	ErrNotConfigured    = errors.New("image hosting is not configured")
	ErrNoFile           = errors.New("no file selected")
	ErrUploadInFlight   = errors.New("upload already in progress")
	ErrNoUploadInFlight = errors.New("no matching upload in progress")
	ErrUnknownPhoto     = errors.New("unknown photo id")
	ErrNotPermutation   = errors.New("order must list every photo id exactly once")
)

// UserMessage returns the text shown to the operator for a rejected upload.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrNotConfigured):
		return "Image hosting is not configured."
	case errors.Is(err, ErrNoFile):
		return "Please select a file to upload."
	case errors.Is(err, ErrUploadInFlight):
		return "An upload is already in progress."
	}
	return err.Error()
}

const (
	StatusUploading = "Uploading image..."
	StatusSuccess   = "Success! Remember to export your data."
	statusFailure   = "Upload failed: "
)

// Phase is the state of the upload trigger.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseUploading Phase = "uploading"
	PhaseSuccess   Phase = "success"
	PhaseFailure   Phase = "failure"
)

type UploadStatus struct {
	Phase     Phase  `json:"phase"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// Busy reports whether the trigger is disabled.
func (u UploadStatus) Busy() bool { return u.Phase == PhaseUploading }

// State is the admin draft. Photos is replaced, never modified in place, so a
// State may be shared after Reduce returns.
type State struct {
	Photos []models.Photo `json:"photos"`
	Upload UploadStatus   `json:"upload"`
}

// Event is an operator action or an upload outcome.
type Event interface{ manageEvent() }

type (
	ListLoaded struct{ Photos []models.Photo }

	// UploadRequested moves the trigger to uploading. It must be reduced before
	// the host is contacted.
	UploadRequested struct {
		RequestID  string
		HasFile    bool
		Configured bool
	}
	// UploadSucceeded prepends Photo. Photo.ID is bumped until unique.
	UploadSucceeded struct {
		RequestID string
		Photo     models.Photo
	}
	UploadFailed struct {
		RequestID string
		Message   string
	}

	PhotoDeleted struct{ ID int64 }
	// PhotoMoved places ID at index To of the resulting list.
	PhotoMoved struct {
		ID int64
		To int
	}
	// PhotoInsertedBefore places ID before Before, or last when Before is nil.
	PhotoInsertedBefore struct {
		ID     int64
		Before *int64
	}
	// OrderRewritten replaces the order with IDs, which must be a permutation.
	OrderRewritten struct{ IDs []int64 }
)

func (ListLoaded) manageEvent()          {}
func (UploadRequested) manageEvent()     {}
func (UploadSucceeded) manageEvent()     {}
func (UploadFailed) manageEvent()        {}
func (PhotoDeleted) manageEvent()        {}
func (PhotoMoved) manageEvent()          {}
func (PhotoInsertedBefore) manageEvent() {}
func (OrderRewritten) manageEvent()      {}

// NewState returns an idle draft of photos.
func NewState(photos []models.Photo) State {
	return State{
		Photos: append([]models.Photo{}, photos...),
		Upload: UploadStatus{Phase: PhaseIdle},
	}
}

// Reduce applies e to s. On error the returned state equals s.
func Reduce(s State, e Event) (State, error) {
	switch e := e.(type) {
	case ListLoaded:
		s.Photos = append([]models.Photo{}, e.Photos...)
		return s, nil

	case UploadRequested:
		switch {
		case !e.Configured:
			return s, ErrNotConfigured
		case !e.HasFile:
			return s, ErrNoFile
		case s.Upload.Busy():
			return s, ErrUploadInFlight
		}
		s.Upload = UploadStatus{Phase: PhaseUploading, Message: StatusUploading, RequestID: e.RequestID}
		return s, nil

	case UploadSucceeded:
		if !s.Upload.Busy() || s.Upload.RequestID != e.RequestID {
			return s, ErrNoUploadInFlight
		}
		p := e.Photo
		p.ID = uniqueID(s.Photos, p.ID)
		s.Photos = append([]models.Photo{p}, s.Photos...)
		s.Upload = UploadStatus{Phase: PhaseSuccess, Message: StatusSuccess}
		return s, nil

	case UploadFailed:
		if !s.Upload.Busy() || s.Upload.RequestID != e.RequestID {
			return s, ErrNoUploadInFlight
		}
		s.Upload = UploadStatus{Phase: PhaseFailure, Message: statusFailure + e.Message}
		return s, nil

	case PhotoDeleted:
		s.Photos = Delete(s.Photos, e.ID)
		return s, nil

	case PhotoMoved:
		photos, err := MoveTo(s.Photos, e.ID, e.To)
		if err != nil {
			return s, err
		}
		s.Photos = photos
		return s, nil

	case PhotoInsertedBefore:
		photos, err := InsertBefore(s.Photos, e.ID, e.Before)
		if err != nil {
			return s, err
		}
		s.Photos = photos
		return s, nil

	case OrderRewritten:
		photos, err := RewriteOrder(s.Photos, e.IDs)
		if err != nil {
			return s, err
		}
		s.Photos = photos
		return s, nil
	}
	return s, nil
}

func uniqueID(photos []models.Photo, id int64) int64 {
	used := make(map[int64]bool, len(photos))
	for _, p := range photos {
		used[p.ID] = true
	}
	for used[id] {
		id++
	}
	return id
}
