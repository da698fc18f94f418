package shared

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestResultFileName(t *testing.T) {
	tc := []struct {
		name string
		in   string
		want string
	}{
		{name: "jpeg", in: "photo.jpg", want: "photo_nobg.png"},
		{name: "nested path", in: "/tmp/pics/cat.webp", want: "cat_nobg.png"},
		{name: "no extension", in: "portrait", want: "portrait_nobg.png"},
		{name: "dot file", in: ".png", want: "result_nobg.png"},
		{name: "empty", in: "", want: "result_nobg.png"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResultFileName(tt.in); got != tt.want {
				t.Errorf("ResultFileName(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tc := []struct {
		in   string
		want log.Level
	}{
		{"debug", log.DebugLevel},
		{" WARN ", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"nonsense", log.InfoLevel},
		{"", log.InfoLevel},
	}

	for _, tt := range tc {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLogLevel(tt.in); got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoggers(t *testing.T) {
	t.Run("NewLogger writes to provided writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		WithLogger(logger, "file", "cat.png").Info("uploading")

		out := buf.String()
		if !strings.Contains(out, "uploading") || !strings.Contains(out, "cat.png") {
			t.Errorf("expected message and key/value in output, got %q", out)
		}
	})

	t.Run("NewFileLogger creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "cutout.log")
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("failed to create file logger: %v", err)
		}
		logger.Info("hello")

		content, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read log file: %v", err)
		}
		if !strings.Contains(string(content), "hello") {
			t.Errorf("expected log line in file, got %q", content)
		}
	})
}

func TestOpenCommand(t *testing.T) {
	for goos, bin := range map[string]string{"darwin": "open", "linux": "xdg-open", "windows": "cmd"} {
		t.Run(goos, func(t *testing.T) {
			cmd, err := openCommand(goos, "/tmp/result.png")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if filepath.Base(cmd.Args[0]) != bin {
				t.Errorf("expected %s, got %v", bin, cmd.Args)
			}
			if cmd.Args[len(cmd.Args)-1] != "/tmp/result.png" {
				t.Errorf("expected target as last argument, got %v", cmd.Args)
			}
		})
	}

	t.Run("unsupported", func(t *testing.T) {
		if _, err := openCommand("plan9", "x"); err == nil {
			t.Error("expected error for unsupported platform")
		}
	})
}
