package models

import (
	"fmt"
	"time"
)

// UploadStatus is the terminal outcome of a recorded upload session.
type UploadStatus string

const (
	UploadSucceeded     UploadStatus = "succeeded"
	UploadAuthFailed    UploadStatus = "auth_failed"
	UploadAuthExpired   UploadStatus = "auth_expired"
	UploadRejected      UploadStatus = "rejected"
	UploadTransportFail UploadStatus = "transport_error"
	UploadErrored       UploadStatus = "error"
)

// UploadRecord is one row of upload history.
type UploadRecord struct {
	id         string
	sequence   int
	FileName   string
	FileSize   int64
	Status     UploadStatus
	StatusCode int
	Message    string
	Duration   time.Duration
	createdAt  time.Time
}

var _ Model = (*UploadRecord)(nil)

// NewUploadRecord creates an UploadRecord stamped with the current time.
func NewUploadRecord(fileName string, fileSize int64, status UploadStatus) *UploadRecord {
	return &UploadRecord{
		FileName:  fileName,
		FileSize:  fileSize,
		Status:    status,
		createdAt: time.Now().UTC(),
	}
}

func (u *UploadRecord) ID() string           { return u.id }
func (u *UploadRecord) Sequence() int        { return u.sequence }
func (u *UploadRecord) CreatedAt() time.Time { return u.createdAt }

func (u *UploadRecord) SetID(id string)          { u.id = id }
func (u *UploadRecord) SetSequence(seq int)      { u.sequence = seq }
func (u *UploadRecord) SetCreatedAt(t time.Time) { u.createdAt = t }

// Validate checks required fields.
func (u *UploadRecord) Validate() error {
	if u.FileName == "" {
		return fmt.Errorf("file name is required")
	}
	switch u.Status {
	case UploadSucceeded, UploadAuthFailed, UploadAuthExpired, UploadRejected, UploadTransportFail, UploadErrored:
	default:
		return fmt.Errorf("unknown upload status %q", u.Status)
	}
	if u.FileSize < 0 {
		return fmt.Errorf("file size must not be negative")
	}
	return nil
}
