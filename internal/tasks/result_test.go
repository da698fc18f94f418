package tasks

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/cutout/internal/models"
	"github.com/desertthunder/cutout/internal/shared"
	tu "github.com/desertthunder/cutout/internal/testing"
)

func TestResult(t *testing.T) {
	dir := t.TempDir()
	res, err := createResult(dir, "cat.jpeg", &models.ResultImage{Data: tu.PNGSignature, ContentType: "image/png"})
	if err != nil {
		t.Fatalf("failed to create result: %v", err)
	}

	t.Run("Held On Disk", func(t *testing.T) {
		if filepath.Dir(res.Path) != dir {
			t.Errorf("expected result in %s, got %s", dir, res.Path)
		}
		if res.Size != len(tu.PNGSignature) {
			t.Errorf("expected size %d, got %d", len(tu.PNGSignature), res.Size)
		}
		if b, _ := res.Bytes(); !bytes.Equal(b, tu.PNGSignature) {
			t.Errorf("unexpected bytes %v", b)
		}
	})

	t.Run("URI", func(t *testing.T) {
		uri := res.URI()
		if !strings.HasPrefix(uri, "file://") || !strings.HasSuffix(uri, filepath.Base(res.Path)) {
			t.Errorf("unexpected uri %s", uri)
		}
		var empty *Result
		if empty.URI() != "" {
			t.Error("nil result should have no uri")
		}
	})

	t.Run("Default Name", func(t *testing.T) {
		if res.DefaultName() != "cat_nobg.png" {
			t.Errorf("expected cat_nobg.png, got %s", res.DefaultName())
		}
	})

	t.Run("Save Creates Parents", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "a", "b", "out.png")
		saved, err := res.saveTo(dest)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if saved != dest {
			t.Errorf("expected %s, got %s", dest, saved)
		}
		tu.AssertFileExists(t, dest)
	})

	t.Run("Release", func(t *testing.T) {
		if err := res.release(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		tu.AssertFileMissing(t, res.Path)
		if err := res.release(); err != nil {
			t.Errorf("second release should be a no-op, got %v", err)
		}
		if _, err := os.Stat(res.Path); !os.IsNotExist(err) {
			t.Error("expected file removed")
		}
	})
}

func TestDismissReason(t *testing.T) {
	tc := map[DismissReason]string{
		DismissButton:     "close button",
		DismissBackground: "background",
		DismissIcon:       "close icon",
		DismissEscape:     "escape",
		DismissReason(9):  "dismiss(9)",
	}
	for reason, want := range tc {
		if got := reason.String(); got != want {
			t.Errorf("DismissReason(%d).String() = %v, want %v", int(reason), got, want)
		}
	}
}

func TestAlertMessage(t *testing.T) {
	tc := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"no file", shared.ErrNoFileSelected, ""},
		{"in progress", shared.ErrUploadInProgress, ""},
		{"auth", fmt.Errorf("%w: status 401", shared.ErrAuthFailed), "Authentication failed. Please try again."},
		{"expired", shared.ErrSessionExpired, "Session expired. Please try again."},
		{"reauth", fmt.Errorf("%w: boom", shared.ErrReauthFailed), "Authentication failed. Please restart cutout and try again."},
		{"rejected", fmt.Errorf("%w: status 500", shared.ErrRejected), "Error processing image. Please try again."},
		{"transport", fmt.Errorf("%w: refused", shared.ErrUploadFailed), "Upload failed. Please try again."},
		{"invalid image", shared.ErrInvalidImage, "Please choose an image file."},
		{"unexpected", errors.New("disk on fire"), "An error occurred. Please try again."},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := AlertMessage(tt.err); got != tt.want {
				t.Errorf("AlertMessage(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}
