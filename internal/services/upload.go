package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"photo-gallery/internal/hosting"
	"photo-gallery/internal/manage"
	"photo-gallery/internal/models"

	"go.uber.org/zap"
)

// UploadInput is one submission of the upload form. File is nil when no file
// was selected.
type UploadInput struct {
	Filename    string
	File        io.Reader
	Title       string
	Date        string
	Description string
}

// UploadOutcome is the draft right after the upload settled.
type UploadOutcome struct {
	Photo models.Photo
	State manage.State
}

// Upload checks the preconditions, disables the trigger, then sends the file
// to the image host outside the draft lock. Rejections return a manage
// sentinel error without contacting the host.
func (s *ManageService) Upload(ctx context.Context, in UploadInput) (*UploadOutcome, error) {
	reqID := s.newID()
	if _, err := s.draft.Dispatch(manage.UploadRequested{
		RequestID:  reqID,
		HasFile:    in.File != nil,
		Configured: s.host.Configured(),
	}); err != nil {
		return nil, err
	}

	log := s.logger.With(zap.String("request_id", reqID), zap.String("filename", in.Filename))
	log.Info("Uploading image")

	rec := &models.UploadRecord{
		RequestID:   reqID,
		Filename:    in.Filename,
		Title:       in.Title,
		Date:        in.Date,
		Description: in.Description,
	}

	res, err := s.host.Upload(ctx, in.Filename, in.File)
	if err != nil {
		msg := failureMessage(err)
		log.Error("Upload failed", zap.Error(err))
		st, _ := s.draft.Dispatch(manage.UploadFailed{RequestID: reqID, Message: msg})
		rec.Status = models.UploadStatusFailed
		rec.Error = msg
		s.record(ctx, rec)
		return &UploadOutcome{State: st}, fmt.Errorf("%w: %s", ErrUploadFailed, msg)
	}

	photo := models.Photo{
		ID:          s.now().UnixMilli(),
		Src:         res.SecureURL,
		Title:       in.Title,
		Date:        in.Date,
		Description: in.Description,
	}
	st, err := s.draft.Dispatch(manage.UploadSucceeded{RequestID: reqID, Photo: photo})
	if err != nil {
		return nil, fmt.Errorf("settle upload %s: %w", reqID, err)
	}
	photo = st.Photos[0]
	log.Info("Upload stored in draft", zap.Int64("photo_id", photo.ID), zap.String("secure_url", photo.Src))

	rec.Status = models.UploadStatusUploaded
	rec.SecureURL = photo.Src
	rec.PhotoID = photo.ID
	s.record(ctx, rec)
	return &UploadOutcome{Photo: photo, State: st}, nil
}

func (s *ManageService) record(ctx context.Context, rec *models.UploadRecord) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Record(context.WithoutCancel(ctx), rec); err != nil {
		s.logger.Warn("Could not journal upload", zap.String("request_id", rec.RequestID), zap.Error(err))
	}
}

// failureMessage is the host's own message when it sent one.
func failureMessage(err error) string {
	var upErr *hosting.UploadError
	if errors.As(err, &upErr) {
		return upErr.Message
	}
	return err.Error()
}
