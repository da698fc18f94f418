package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/cutout/internal/formatter"
	"github.com/desertthunder/cutout/internal/models"
	"github.com/desertthunder/cutout/internal/shared"
	"github.com/desertthunder/cutout/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SelectView ViewState = iota
	UploadView
	ResultView
	AlertView
	HistoryView
)

// rows kept free around the file picker for the header and footer
const chromeRows = 10

const historyLimit = 50

var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".tif", ".tiff"}

// HistorySource lists recorded uploads, newest first.
type HistorySource interface {
	List(limit int) ([]*models.UploadRecord, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	cancel       context.CancelFunc
	view         ViewState
	ctrl         *tasks.Controller
	history      HistorySource
	width        int
	height       int
	picker       filepicker.Model
	bar          progress.Model
	spinner      spinner.Model
	historyList  list.Model
	progressChan chan tasks.ProgressUpdate
	done         chan Msg
	update       tasks.ProgressUpdate
	alert        string
	notice       string
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model browsing startDir. history may be nil.
func NewModel(ctx context.Context, ctrl *tasks.Controller, history HistorySource, startDir string) *Model {
	ctx, cancel := context.WithCancel(ctx)

	picker := filepicker.New()
	picker.AllowedTypes = imageExtensions
	picker.AutoHeight = true
	if startDir != "" {
		picker.CurrentDirectory = startDir
	}

	return &Model{
		ctx:     ctx,
		cancel:  cancel,
		view:    SelectView,
		ctrl:    ctrl,
		history: history,
		picker:  picker,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.ok)),
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init reads the starting directory.
func (m *Model) Init() tea.Cmd {
	return m.picker.Init()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = max(10, min(msg.Width-12, 60))
		if m.view == HistoryView {
			m.historyList.SetSize(msg.Width-4, msg.Height-4)
		}
		return m.updatePicker(tea.WindowSizeMsg{Width: msg.Width, Height: max(3, msg.Height-chromeRows)})

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		switch m.view {
		case SelectView:
			return m.handleSelectKeys(msg)
		case UploadView:
			return m.handleUploadKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		case AlertView:
			m.dismissAlert()
			return m, nil
		case HistoryView:
			return m.handleHistoryKeys(msg)
		}

	case tea.MouseMsg:
		if m.view == ResultView && msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			return m.closeResult(tasks.DismissBackground)
		}
		return m, nil

	case spinner.TickMsg:
		if m.view != UploadView || m.update.Phase != models.PhaseProcessing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	if m.view == HistoryView {
		var cmd tea.Cmd
		m.historyList, cmd = m.historyList.Update(msg)
		return m, cmd
	}
	return m.updatePicker(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgProgressUpdate:
		update := msg.data.(tasks.ProgressUpdate)
		processing := update.Phase == models.PhaseProcessing && m.update.Phase != models.PhaseProcessing
		m.update = update
		if processing {
			return m, tea.Batch(m.waitForProgress(), m.spinner.Tick)
		}
		return m, m.waitForProgress()

	case MsgUploadComplete:
		out := msg.data.(uploadOutcome)
		m.progressChan = nil
		m.done = nil
		m.update = tasks.ProgressUpdate{}
		if out.err != nil {
			m.showAlert(tasks.AlertMessage(out.err))
			return m, nil
		}
		m.view = ResultView
		return m, nil

	case MsgResultSaved:
		out := msg.data.(savedOutcome)
		if out.err != nil {
			m.notice = styles.err.Render(fmt.Sprintf("Download failed: %v", out.err))
		} else {
			m.notice = styles.ok.Render("Saved to " + out.path)
		}
		return m, nil

	case MsgResultOpened:
		if err, _ := msg.data.(error); err != nil {
			m.notice = styles.err.Render(fmt.Sprintf("Could not open image: %v", err))
		}
		return m, nil

	case MsgHistoryFetched:
		out := msg.data.(historyOutcome)
		if out.err != nil {
			m.showAlert(tasks.AlertMessage(out.err))
			return m, nil
		}
		m.historyList = list.New(uploadItems(out.records), list.NewDefaultDelegate(), 0, 0)
		m.historyList.Title = "Recent uploads"
		m.historyList.SetShowHelp(false)
		m.historyList.SetSize(max(20, m.width-4), max(5, m.height-4))
		m.view = HistoryView
		return m, nil
	}
	return m, nil
}

// showAlert blocks on message; an empty message returns to file selection.
func (m *Model) showAlert(message string) {
	m.notice = ""
	if message == "" {
		m.view = SelectView
		return
	}
	m.alert = message
	m.view = AlertView
}

func (m *Model) dismissAlert() {
	m.alert = ""
	m.view = SelectView
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.cancel()
	return m, tea.Quit
}

func (m *Model) handleSelectKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m.quit()
	case key.Matches(msg, m.keys.upload):
		if !m.ctrl.CanUpload() {
			return m, nil
		}
		return m, m.startUpload()
	case key.Matches(msg, m.keys.history):
		if m.history == nil {
			return m, nil
		}
		return m, m.fetchHistory()
	}
	return m.updatePicker(msg)
}

func (m *Model) handleUploadKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.quit) {
		return m.quit()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m.quit()
	case key.Matches(msg, m.keys.save):
		return m, m.saveResult()
	case key.Matches(msg, m.keys.view):
		return m, m.openResult()
	case key.Matches(msg, m.keys.close):
		return m.closeResult(tasks.DismissButton)
	case key.Matches(msg, m.keys.closeIcon):
		return m.closeResult(tasks.DismissIcon)
	case key.Matches(msg, m.keys.escape):
		return m.closeResult(tasks.DismissEscape)
	}
	return m, nil
}

func (m *Model) handleHistoryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.historyList.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.quit):
			return m.quit()
		case key.Matches(msg, m.keys.escape), key.Matches(msg, m.keys.history):
			m.view = SelectView
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.historyList, cmd = m.historyList.Update(msg)
	return m, cmd
}

func (m *Model) closeResult(reason tasks.DismissReason) (tea.Model, tea.Cmd) {
	if m.ctrl.CloseResult(reason) {
		m.view = SelectView
		m.notice = ""
	}
	return m, nil
}

func (m *Model) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		if _, err := m.ctrl.SelectFile(path); err != nil {
			m.showAlert(tasks.AlertMessage(err))
		}
		return m, cmd
	}
	if ok, _ := m.picker.DidSelectDisabledFile(msg); ok {
		m.ctrl.SelectFile("")
		m.showAlert(tasks.AlertMessage(shared.ErrInvalidImage))
	}
	return m, cmd
}

// startUpload runs the session in the background. The goroutine closes the progress channel before handing
// over the outcome, so [Model.waitForProgress] never misses an update.
func (m *Model) startUpload() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, tasks.ProgressBuffer)
	m.done = make(chan Msg, 1)
	m.update = tasks.ProgressUpdate{Phase: models.PhaseUploading}
	m.notice = ""
	m.view = UploadView

	updates, done := m.progressChan, m.done
	go func() {
		result, err := m.ctrl.Upload(m.ctx, updates)
		close(updates)
		done <- uploadCompleteMsg(result, err)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	updates, done := m.progressChan, m.done
	return func() tea.Msg {
		if updates == nil {
			return nil
		}

		update, ok := <-updates
		if !ok {
			return <-done
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) saveResult() tea.Cmd {
	return func() tea.Msg {
		path, err := m.ctrl.SaveResult("")
		return resultSavedMsg(path, err)
	}
}

func (m *Model) openResult() tea.Cmd {
	result := m.ctrl.Result()
	return func() tea.Msg {
		if result == nil {
			return resultOpenedMsg(shared.ErrNoResult)
		}
		return resultOpenedMsg(shared.OpenFile(result.Path))
	}
}

func (m *Model) fetchHistory() tea.Cmd {
	return func() tea.Msg {
		records, err := m.history.List(historyLimit)
		return historyFetchedMsg(records, err)
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case SelectView:
		return m.renderSelect()
	case UploadView:
		return m.renderUpload()
	case ResultView:
		return m.renderResult()
	case AlertView:
		return m.renderAlert()
	case HistoryView:
		return m.renderHistory()
	default:
		return ""
	}
}

func (m *Model) renderSelect() string {
	var b strings.Builder

	b.WriteString(styles.title.Render("Remove image background"))
	b.WriteString("\n")
	b.WriteString(m.picker.View())
	b.WriteString("\n\n")

	label := m.ctrl.FileLabel()
	if m.ctrl.Selected() == nil {
		label = styles.help.Render(label)
	}
	b.WriteString("File: " + label + "\n\n")

	if m.ctrl.CanUpload() {
		b.WriteString(styles.button.Render("Upload"))
	} else {
		b.WriteString(styles.disabled.Render("Upload"))
	}

	if m.notice != "" {
		b.WriteString("\n\n" + m.notice)
	}

	helpKeys := []key.Binding{m.keys.open, m.keys.back, m.keys.upload}
	if m.history != nil {
		helpKeys = append(helpKeys, m.keys.history)
	}
	helpKeys = append(helpKeys, m.keys.quit)
	b.WriteString("\n\n" + m.help.ShortHelpView(helpKeys))
	return b.String()
}

func (m *Model) renderUpload() string {
	title := styles.title.Render("Uploading " + m.ctrl.FileLabel())

	var body string
	if m.update.Phase == models.PhaseProcessing {
		body = fmt.Sprintf("%s Processing image...", m.spinner.View())
	} else {
		pct := m.update.Percent
		body = fmt.Sprintf("%s %3d%%", m.bar.ViewAs(float64(pct)/100), pct)
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s", title, body, helpView)
}

func (m *Model) renderResult() string {
	modal := m.ctrl.Modal()
	result := m.ctrl.Result()
	if !modal.Active || result == nil {
		return styles.err.Render("No result available")
	}

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		styles.ok.Render("✓ Background removed"),
		"   ",
		styles.help.Render("[×]"),
	)
	info := fmt.Sprintf("Image:    %s\nDownload: %s (%s)",
		modal.ImageSource, result.DefaultName(), formatter.FormatBytes(int64(result.Size)))
	buttons := lipgloss.JoinHorizontal(lipgloss.Top,
		styles.button.Render("Download"), " ", styles.disabled.Render("Close"))

	content := lipgloss.JoinVertical(lipgloss.Left, header, "", info, "", buttons)
	if m.notice != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, content, "", m.notice)
	}

	box := styles.modal.Render(content)
	if m.width > 0 && m.height > 0 {
		box = lipgloss.Place(m.width, max(lipgloss.Height(box), m.height-2), lipgloss.Center, lipgloss.Center, box)
	}

	helpKeys := []key.Binding{m.keys.save, m.keys.view, m.keys.close, m.keys.closeIcon, m.keys.escape, m.keys.quit}
	return fmt.Sprintf("%s\n%s", box, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderAlert() string {
	box := styles.alert.Render(lipgloss.JoinVertical(lipgloss.Left,
		styles.err.Render(m.alert),
		"",
		styles.help.Render("Press any key to continue"),
	))
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}

func (m *Model) renderHistory() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.up, m.keys.down, m.keys.escape, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.historyList.View(), helpView)
}
