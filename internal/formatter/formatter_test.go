package formatter

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/cutout/internal/models"
	"github.com/desertthunder/cutout/internal/shared"
	th "github.com/desertthunder/cutout/internal/testing"
)

func sampleRecords() []*models.UploadRecord {
	created := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

	ok := models.NewUploadRecord("cat.png", 2_100_000, models.UploadSucceeded)
	ok.SetID("id-1")
	ok.SetSequence(1)
	ok.SetCreatedAt(created)
	ok.StatusCode = 200
	ok.Duration = 1500 * time.Millisecond

	failed := models.NewUploadRecord("dog, small.jpg", 512, models.UploadRejected)
	failed.SetID("id-2")
	failed.SetSequence(2)
	failed.SetCreatedAt(created.Add(time.Minute))
	failed.StatusCode = 500
	failed.Message = "Internal Server Error"
	failed.Duration = 40 * time.Millisecond

	return []*models.UploadRecord{ok, failed}
}

func TestExporters(t *testing.T) {
	records := sampleRecords()

	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(records)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "Sequence,ID,File,Size,Status,Code,Duration (ms),Created,Message") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "1,id-1,cat.png,2100000,succeeded,200,1500,2025-03-14T09:26:53Z,") {
			t.Errorf("CSV missing first record, got: %s", output)
		}
		if !strings.Contains(output, `"dog, small.jpg"`) {
			t.Errorf("CSV should quote names containing commas, got: %s", output)
		}
		if !strings.Contains(output, "Internal Server Error") {
			t.Errorf("CSV missing message")
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(records)
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "FILE") || !strings.Contains(output, "STATUS") {
			t.Errorf("Text missing header, got: %s", output)
		}
		if !strings.Contains(output, "2.1 MB") {
			t.Errorf("Text should render sizes, got: %s", output)
		}
		if !strings.Contains(output, "1.5s") || !strings.Contains(output, "40ms") {
			t.Errorf("Text should render durations, got: %s", output)
		}
		if !strings.Contains(output, "rejected") {
			t.Errorf("Text missing rejected status")
		}
	})

	t.Run("ExportToText Empty", func(t *testing.T) {
		data, err := ExportToText(nil)
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}
		if string(data) != "No uploads recorded.\n" {
			t.Errorf("unexpected output %q", data)
		}
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(records)
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		var decoded []map[string]any
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(decoded) != 2 {
			t.Fatalf("expected 2 records, got %d", len(decoded))
		}
		if decoded[0]["file_name"] != "cat.png" || decoded[0]["duration_ms"] != float64(1500) {
			t.Errorf("unexpected first record: %v", decoded[0])
		}
		if _, ok := decoded[0]["message"]; ok {
			t.Error("empty message should be omitted")
		}
	})

	t.Run("ExportToJSON Empty", func(t *testing.T) {
		data, err := ExportToJSON(nil)
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}
		if strings.TrimSpace(string(data)) != "[]" {
			t.Errorf("expected empty array, got %s", data)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(records)
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "# Uploads") || !strings.Contains(output, "**Total**: 2") {
			t.Errorf("Markdown missing heading, got: %s", output)
		}
		if !strings.Contains(output, "| 1 | cat.png | 2.1 MB | succeeded | 200 |") {
			t.Errorf("Markdown missing first row, got: %s", output)
		}
	})
}

func TestParseFormat(t *testing.T) {
	tc := []struct {
		in   string
		want Format
	}{
		{"", FormatText},
		{"text", FormatText},
		{"CSV", FormatCSV},
		{" json ", FormatJSON},
		{"markdown", FormatMarkdown},
		{"md", FormatMarkdown},
	}
	for _, tt := range tc {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	t.Run("unknown", func(t *testing.T) {
		if _, err := ParseFormat("yaml"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestFormatBytes(t *testing.T) {
	tc := map[int64]string{
		0:         "0 B",
		512:       "512 B",
		2_100_000: "2.1 MB",
		-1:        "0 B",
	}
	for in, want := range tc {
		if got := FormatBytes(in); got != want {
			t.Errorf("FormatBytes(%d) = %v, want %v", in, got, want)
		}
	}
}

func TestWriteExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "history.csv")
	if err := WriteExport(sampleRecords(), FormatCSV, path); err != nil {
		t.Fatalf("WriteExport failed: %v", err)
	}

	th.AssertFileExists(t, path)
	if content := th.MustReadFile(t, path); !strings.HasPrefix(content, "Sequence,") {
		t.Errorf("unexpected content: %s", content)
	}

	if err := WriteExport(nil, Format("xml"), path); !errors.Is(err, shared.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}
