package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/cutout/internal/formatter"
	"github.com/desertthunder/cutout/internal/models"
)

var _ list.Item = uploadItem{}

// uploadItem wraps [models.UploadRecord] to implement [list.Item].
type uploadItem struct {
	record *models.UploadRecord
}

func (i uploadItem) FilterValue() string { return i.record.FileName }
func (i uploadItem) Title() string {
	return fmt.Sprintf("#%d %s", i.record.Sequence(), i.record.FileName)
}
func (i uploadItem) Description() string {
	desc := fmt.Sprintf("%s • %s", i.record.Status, formatter.FormatBytes(i.record.FileSize))
	if i.record.StatusCode != 0 {
		desc = fmt.Sprintf("%s • HTTP %d", desc, i.record.StatusCode)
	}
	return fmt.Sprintf("%s • %s", desc, i.record.CreatedAt().Local().Format("2006-01-02 15:04"))
}

func uploadItems(records []*models.UploadRecord) []list.Item {
	items := make([]list.Item, len(records))
	for i, r := range records {
		items[i] = uploadItem{record: r}
	}
	return items
}
