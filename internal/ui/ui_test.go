package ui

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/cutout/internal/models"
	"github.com/desertthunder/cutout/internal/services"
	"github.com/desertthunder/cutout/internal/shared"
	"github.com/desertthunder/cutout/internal/tasks"
	tu "github.com/desertthunder/cutout/internal/testing"
)

type historyStub struct {
	records []*models.UploadRecord
	err     error
}

func (h *historyStub) List(int) ([]*models.UploadRecord, error) { return h.records, h.err }

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T, fake *tu.FakeRemover, history HistorySource) (*Model, string) {
	t.Helper()
	srv := fake.Start(t)
	quiet := shared.NewLogger(&bytes.Buffer{})
	client := services.NewClient(srv.URL, srv.Client())
	session := services.NewSession(client, services.NewMemoryTokenStore("cached"), nil, quiet)
	if err := session.Load(); err != nil {
		t.Fatalf("failed to load session: %v", err)
	}

	out := t.TempDir()
	ctrl := tasks.NewController(tasks.ControllerOpts{
		Session:         session,
		Remover:         client,
		Logger:          quiet,
		ProcessingDelay: time.Hour,
		TempDir:         t.TempDir(),
		OutputDir:       out,
	})
	t.Cleanup(ctrl.Close)

	return NewModel(context.Background(), ctrl, history, t.TempDir()), out
}

// drive feeds command output back into the model until the upload view is left.
func drive(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	for i := 0; cmd != nil && m.view == UploadView; i++ {
		if i > 500 {
			t.Fatal("upload did not finish")
		}
		_, cmd = m.Update(cmd())
	}
}

func uploadCat(t *testing.T, m *Model) {
	t.Helper()
	if _, err := m.ctrl.SelectFile(tu.WriteImage(t, t.TempDir(), "cat.png")); err != nil {
		t.Fatalf("failed to select file: %v", err)
	}
	_, cmd := m.Update(runeKey("u"))
	if m.view != UploadView || cmd == nil {
		t.Fatalf("expected upload to start, view=%v", m.view)
	}
	drive(t, m, cmd)
}

func TestSelectView(t *testing.T) {
	t.Run("Upload Disabled Without File", func(t *testing.T) {
		m, _ := newTestModel(t, &tu.FakeRemover{}, nil)

		_, cmd := m.Update(runeKey("u"))
		if cmd != nil || m.view != SelectView {
			t.Errorf("upload key should be ignored, view=%v", m.view)
		}
		if !strings.Contains(m.View(), tasks.NoFileLabel) {
			t.Errorf("expected placeholder label, got %s", m.View())
		}
	})

	t.Run("Shows Selected File", func(t *testing.T) {
		m, _ := newTestModel(t, &tu.FakeRemover{}, nil)
		m.ctrl.SelectFile(tu.WriteImage(t, t.TempDir(), "cat.png"))

		if !strings.Contains(m.View(), "cat.png") {
			t.Errorf("expected file name in view, got %s", m.View())
		}
	})

	t.Run("Quit", func(t *testing.T) {
		m, _ := newTestModel(t, &tu.FakeRemover{}, nil)
		_, cmd := m.Update(runeKey("q"))
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
		if m.ctx.Err() == nil {
			t.Error("quitting should cancel in-flight work")
		}
	})
}

func TestUploadFlow(t *testing.T) {
	t.Run("Failure Shows Alert", func(t *testing.T) {
		m, _ := newTestModel(t, &tu.FakeRemover{RemoveStatuses: []int{http.StatusInternalServerError}}, nil)
		uploadCat(t, m)

		if m.view != AlertView {
			t.Fatalf("expected alert view, got %v", m.view)
		}
		if !strings.Contains(m.View(), "Error processing image. Please try again.") {
			t.Errorf("unexpected alert: %s", m.View())
		}

		m.Update(runeKey("z"))
		if m.view != SelectView || m.alert != "" {
			t.Errorf("any key should dismiss the alert, view=%v", m.view)
		}
		if !m.ctrl.CanUpload() {
			t.Error("trigger should be enabled after reset")
		}
	})

	t.Run("Progress Rendered", func(t *testing.T) {
		m, _ := newTestModel(t, &tu.FakeRemover{}, nil)
		m.view = UploadView
		m.Update(progressUpdateMsg(tasks.ProgressUpdate{Phase: models.PhaseUploading, Percent: 42}))

		if !strings.Contains(m.View(), "42%") {
			t.Errorf("expected percentage in view, got %s", m.View())
		}
	})

	t.Run("Processing Rendered", func(t *testing.T) {
		m, _ := newTestModel(t, &tu.FakeRemover{}, nil)
		m.view = UploadView
		_, cmd := m.Update(progressUpdateMsg(tasks.ProgressUpdate{Phase: models.PhaseProcessing, Percent: 100}))

		if cmd == nil {
			t.Error("expected spinner tick to start")
		}
		if !strings.Contains(m.View(), "Processing image") {
			t.Errorf("expected processing indicator, got %s", m.View())
		}
	})

	t.Run("Success Opens Modal", func(t *testing.T) {
		m, out := newTestModel(t, &tu.FakeRemover{}, nil)
		uploadCat(t, m)

		if m.view != ResultView {
			t.Fatalf("expected result view, got %v (alert %q)", m.view, m.alert)
		}
		modal := m.ctrl.Modal()
		if !modal.Active || !strings.Contains(m.View(), modal.ImageSource) {
			t.Errorf("expected modal with image reference, got %s", m.View())
		}

		_, cmd := m.Update(runeKey("s"))
		if cmd == nil {
			t.Fatal("expected save command")
		}
		m.Update(cmd())
		saved := filepath.Join(out, "cat_nobg.png")
		tu.AssertFileExists(t, saved)
		if !strings.Contains(m.notice, saved) {
			t.Errorf("expected saved notice, got %q", m.notice)
		}
	})
}

func TestResultDismissal(t *testing.T) {
	tc := []struct {
		name string
		msg  tea.Msg
	}{
		{"close button", tea.KeyMsg{Type: tea.KeyEnter}},
		{"close icon", runeKey("x")},
		{"escape", tea.KeyMsg{Type: tea.KeyEsc}},
		{"background click", tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestModel(t, &tu.FakeRemover{}, nil)
			uploadCat(t, m)
			result := m.ctrl.Result()
			if result == nil {
				t.Fatal("expected a result")
			}

			m.Update(tt.msg)
			if m.view != SelectView {
				t.Errorf("expected select view, got %v", m.view)
			}
			if m.ctrl.Modal().Active {
				t.Error("modal should be inactive")
			}
			tu.AssertFileMissing(t, result.Path)
		})
	}

	t.Run("Mouse Outside Result View", func(t *testing.T) {
		m, _ := newTestModel(t, &tu.FakeRemover{}, nil)
		m.Update(tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
		if m.view != SelectView {
			t.Errorf("click should not change view, got %v", m.view)
		}
	})
}

func TestHistoryView(t *testing.T) {
	t.Run("Lists Records", func(t *testing.T) {
		record := models.NewUploadRecord("cat.png", 2048, models.UploadSucceeded)
		record.SetSequence(7)
		m, _ := newTestModel(t, &tu.FakeRemover{}, &historyStub{records: []*models.UploadRecord{record}})
		m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

		_, cmd := m.Update(runeKey("H"))
		if cmd == nil {
			t.Fatal("expected history fetch")
		}
		m.Update(cmd())
		if m.view != HistoryView {
			t.Fatalf("expected history view, got %v", m.view)
		}
		if !strings.Contains(m.View(), "#7 cat.png") {
			t.Errorf("expected record in list, got %s", m.View())
		}

		m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		if m.view != SelectView {
			t.Errorf("esc should return to select view, got %v", m.view)
		}
	})

	t.Run("Fetch Error Alerts", func(t *testing.T) {
		m, _ := newTestModel(t, &tu.FakeRemover{}, &historyStub{err: errors.New("db locked")})
		_, cmd := m.Update(runeKey("H"))
		m.Update(cmd())
		if m.view != AlertView {
			t.Errorf("expected alert view, got %v", m.view)
		}
	})

	t.Run("Disabled Without Source", func(t *testing.T) {
		m, _ := newTestModel(t, &tu.FakeRemover{}, nil)
		if _, cmd := m.Update(runeKey("H")); cmd != nil {
			t.Error("history key should be ignored without a source")
		}
	})
}
