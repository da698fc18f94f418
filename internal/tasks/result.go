package tasks

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"github.com/desertthunder/cutout/internal/models"
	"github.com/desertthunder/cutout/internal/shared"
)

// Result references a processed image held in a temporary file.
type Result struct {
	SourceName  string
	Path        string
	Size        int
	ContentType string
}

// URI returns the file:// reference used as image source and download target.
func (r *Result) URI() string {
	if r == nil || r.Path == "" {
		return ""
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(r.Path)}).String()
}

// DefaultName is the file name offered when saving the result.
func (r *Result) DefaultName() string {
	return shared.ResultFileName(r.SourceName)
}

// Bytes reads the referenced image back.
func (r *Result) Bytes() ([]byte, error) {
	return os.ReadFile(r.Path)
}

func createResult(dir, sourceName string, img *models.ResultImage) (*Result, error) {
	f, err := os.CreateTemp(dir, "cutout-*.png")
	if err != nil {
		return nil, fmt.Errorf("failed to create result file: %w", err)
	}

	if _, err := f.Write(img.Data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("failed to write result file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, fmt.Errorf("failed to close result file: %w", err)
	}

	return &Result{
		SourceName:  sourceName,
		Path:        f.Name(),
		Size:        img.Size(),
		ContentType: img.ContentType,
	}, nil
}

func (r *Result) release() error {
	if err := os.Remove(r.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to release result: %w", err)
	}
	return nil
}

// saveTo copies the result to dest. A directory dest receives the default name.
func (r *Result) saveTo(dest string) (string, error) {
	if info, err := os.Stat(dest); err == nil && info.IsDir() {
		dest = filepath.Join(dest, r.DefaultName())
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	src, err := os.Open(r.Path)
	if err != nil {
		return "", fmt.Errorf("failed to open result: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dest, err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return "", fmt.Errorf("failed to write %s: %w", dest, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", dest, err)
	}

	return dest, nil
}

// DismissReason names the control that closed the modal.
type DismissReason int

const (
	DismissButton DismissReason = iota
	DismissBackground
	DismissIcon
	DismissEscape
)

func (d DismissReason) String() string {
	switch d {
	case DismissButton:
		return "close button"
	case DismissBackground:
		return "background"
	case DismissIcon:
		return "close icon"
	case DismissEscape:
		return "escape"
	default:
		return fmt.Sprintf("dismiss(%d)", int(d))
	}
}

// Modal is the result dialog state.
type Modal struct {
	Active         bool
	ImageSource    string
	DownloadTarget string
}
