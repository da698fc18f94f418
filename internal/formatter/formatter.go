// package formatter renders upload history to various formats (plain text, CSV, JSON, Markdown)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/desertthunder/cutout/internal/models"
	"github.com/desertthunder/cutout/internal/shared"
	"github.com/dustin/go-humanize"
)

// Format names an output format of the history command.
type Format string

const (
	FormatText     Format = "text"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
)

// ParseFormat accepts a format name case-insensitively. Empty means [FormatText].
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatCSV, FormatJSON, FormatMarkdown:
		return f, nil
	case "markdown":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
	}
}

// FormatBytes renders a byte count in SI units, e.g. "2.1 MB".
func FormatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

// FormatDuration renders d rounded to milliseconds.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Round(10 * time.Millisecond).String()
}

// Export renders records in the given format.
func Export(records []*models.UploadRecord, format Format) ([]byte, error) {
	switch format {
	case FormatText, "":
		return ExportToText(records)
	case FormatCSV:
		return ExportToCSV(records)
	case FormatJSON:
		return ExportToJSON(records)
	case FormatMarkdown:
		return ExportToMarkdown(records)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// ExportToCSV converts records to CSV with columns: Sequence, ID, File, Size, Status, Code, Duration (ms), Created, Message
func ExportToCSV(records []*models.UploadRecord) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Sequence", "ID", "File", "Size", "Status", "Code", "Duration (ms)", "Created", "Message"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range records {
		row := []string{
			strconv.Itoa(r.Sequence()),
			r.ID(),
			r.FileName,
			strconv.FormatInt(r.FileSize, 10),
			string(r.Status),
			strconv.Itoa(r.StatusCode),
			strconv.FormatInt(r.Duration.Milliseconds(), 10),
			r.CreatedAt().UTC().Format(time.RFC3339),
			r.Message,
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToText renders records as an aligned table.
func ExportToText(records []*models.UploadRecord) ([]byte, error) {
	var buf bytes.Buffer
	if len(records) == 0 {
		buf.WriteString("No uploads recorded.\n")
		return buf.Bytes(), nil
	}

	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tFILE\tSIZE\tSTATUS\tCODE\tTOOK\tWHEN")
	for _, r := range records {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Sequence(), r.FileName, FormatBytes(r.FileSize), r.Status, statusCode(r.StatusCode),
			FormatDuration(r.Duration), humanize.Time(r.CreatedAt()),
		)
	}
	if err := w.Flush(); err != nil {
		return nil, fmt.Errorf("failed to render table: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders records as a Markdown table.
func ExportToMarkdown(records []*models.UploadRecord) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Uploads\n\n")
	buf.WriteString(fmt.Sprintf("**Total**: %d\n\n", len(records)))
	if len(records) == 0 {
		return buf.Bytes(), nil
	}

	buf.WriteString("| # | File | Size | Status | Code | Created |\n")
	buf.WriteString("|---|------|------|--------|------|---------|\n")
	for _, r := range records {
		buf.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %s |\n",
			r.Sequence(), strings.ReplaceAll(r.FileName, "|", `\|`), FormatBytes(r.FileSize), r.Status,
			statusCode(r.StatusCode), r.CreatedAt().UTC().Format(time.RFC3339)))
	}

	return buf.Bytes(), nil
}

type recordJSON struct {
	ID         string `json:"id"`
	Sequence   int    `json:"sequence"`
	FileName   string `json:"file_name"`
	FileSize   int64  `json:"file_size"`
	Status     string `json:"status"`
	StatusCode int    `json:"status_code,omitempty"`
	Message    string `json:"message,omitempty"`
	DurationMS int64  `json:"duration_ms"`
	CreatedAt  string `json:"created_at"`
}

// ExportToJSON renders records as an indented JSON array.
func ExportToJSON(records []*models.UploadRecord) ([]byte, error) {
	out := make([]recordJSON, 0, len(records))
	for _, r := range records {
		out = append(out, recordJSON{
			ID:         r.ID(),
			Sequence:   r.Sequence(),
			FileName:   r.FileName,
			FileSize:   r.FileSize,
			Status:     string(r.Status),
			StatusCode: r.StatusCode,
			Message:    r.Message,
			DurationMS: r.Duration.Milliseconds(),
			CreatedAt:  r.CreatedAt().UTC().Format(time.RFC3339),
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal records: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteExport renders records and writes them to path, creating parent directories.
func WriteExport(records []*models.UploadRecord, format Format, path string) error {
	data, err := Export(records, format)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func statusCode(code int) string {
	if code == 0 {
		return "-"
	}
	return strconv.Itoa(code)
}
