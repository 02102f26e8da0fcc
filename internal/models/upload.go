package models

import "gorm.io/gorm"

const (
	UploadStatusUploaded = "uploaded"
	UploadStatusFailed   = "failed"
)

// UploadRecord is a journal row for one upload attempt against the image host.
// The journal never feeds the photo list; it keeps hosted URLs recoverable when a
// draft is lost before export.
type UploadRecord struct {
	gorm.Model
	RequestID   string `gorm:"uniqueIndex;not null" json:"request_id"`
	Filename    string `json:"filename"`
	Title       string `json:"title"`
	Date        string `json:"date"`
	Description string `json:"description"`
	SecureURL   string `json:"secure_url"`
	PhotoID     int64  `gorm:"index" json:"photo_id"`
	Status      string `gorm:"not null" json:"status"`
	Error       string `json:"error,omitempty"`
}
