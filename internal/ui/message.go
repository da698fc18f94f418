package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/cutout/internal/models"
	"github.com/desertthunder/cutout/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgProgressUpdate MsgKind = iota
	MsgUploadComplete
	MsgResultSaved
	MsgResultOpened
	MsgHistoryFetched
)

type uploadOutcome struct {
	result *tasks.Result
	err    error
}

type savedOutcome struct {
	path string
	err  error
}

type historyOutcome struct {
	records []*models.UploadRecord
	err     error
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// uploadCompleteMsg is the constructor for [MsgUploadComplete]
func uploadCompleteMsg(result *tasks.Result, err error) Msg {
	return Msg{kind: MsgUploadComplete, data: uploadOutcome{result, err}}
}

// resultSavedMsg is the constructor for [MsgResultSaved]
func resultSavedMsg(path string, err error) Msg {
	return Msg{kind: MsgResultSaved, data: savedOutcome{path, err}}
}

// resultOpenedMsg is the constructor for [MsgResultOpened]
func resultOpenedMsg(err error) Msg {
	return Msg{kind: MsgResultOpened, data: err}
}

// historyFetchedMsg is the constructor for [MsgHistoryFetched]
func historyFetchedMsg(records []*models.UploadRecord, err error) Msg {
	return Msg{kind: MsgHistoryFetched, data: historyOutcome{records, err}}
}
