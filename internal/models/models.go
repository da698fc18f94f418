// package models defines the data model for the background-removal client
package models

import (
	"fmt"
	"time"
)

// Model defines the base interface for persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
type Repository[T Model] interface {
	Create(model T) error        // Create inserts a new model into the database
	Get(id string) (T, error)    // Get retrieves a model by its ID
	List(limit int) ([]T, error) // List retrieves the most recent models, newest first
}

// SelectedFile is the image chosen for upload.
type SelectedFile struct {
	Path        string
	Name        string // display name shown next to the file input
	Size        int64
	Format      string // decoder name, e.g. "png", "jpeg", "webp"
	ContentType string
}

// Phase is the UI phase of an upload session.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseUploading
	PhaseProcessing
	PhaseSuccess
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseUploading:
		return "uploading"
	case PhaseProcessing:
		return "processing"
	case PhaseSuccess:
		return "success"
	case PhaseError:
		return "error"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Terminal reports whether the phase ends a session.
func (p Phase) Terminal() bool {
	return p == PhaseSuccess || p == PhaseError
}

// ResultImage is the processed image body returned by the service.
type ResultImage struct {
	Data        []byte
	ContentType string
}

// Size returns the number of bytes in the image body.
func (r *ResultImage) Size() int {
	if r == nil {
		return 0
	}
	return len(r.Data)
}
