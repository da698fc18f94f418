package tasks

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cutout/internal/models"
	"github.com/desertthunder/cutout/internal/services"
	"github.com/desertthunder/cutout/internal/shared"
	"golang.org/x/oauth2"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	// NoFileLabel is shown while nothing is selected.
	NoFileLabel = "No file selected"

	// DefaultProcessingDelay keeps a completed progress bar visible before the processing indicator replaces it.
	DefaultProcessingDelay = 500 * time.Millisecond

	// ProgressBuffer is the channel capacity that guarantees no update of a session is dropped.
	ProgressBuffer = 128
)

// ProgressUpdate is one change of the upload session shown to the user.
type ProgressUpdate struct {
	Phase   models.Phase
	Percent int
	Message string
}

// HistoryRecorder stores one record per finished session.
type HistoryRecorder interface {
	Record(record *models.UploadRecord) error
}

// ControllerOpts contains the dependencies of a [Controller].
type ControllerOpts struct {
	// Session enables the bearer token flow; nil uploads without Authorization.
	Session *services.Session
	Remover services.Remover
	History HistoryRecorder
	Logger  *log.Logger
	// ProcessingDelay is waited after 100% progress before reporting the processing phase.
	ProcessingDelay time.Duration
	// TempDir holds result files; empty means the system default.
	TempDir string
	// OutputDir receives saved results when no destination is given.
	OutputDir string
}

// Controller runs upload sessions for the selected file.
type Controller struct {
	session   *services.Session
	remover   services.Remover
	history   HistoryRecorder
	logger    *log.Logger
	delay     time.Duration
	tempDir   string
	outputDir string

	mu       sync.Mutex
	selected *models.SelectedFile
	phase    models.Phase
	percent  int
	active   bool
	result   *Result
	modal    Modal
}

// NewController creates a controller. opts.Remover is required.
func NewController(opts ControllerOpts) *Controller {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}

	return &Controller{
		session:   opts.Session,
		remover:   opts.Remover,
		history:   opts.History,
		logger:    opts.Logger,
		delay:     opts.ProcessingDelay,
		tempDir:   opts.TempDir,
		outputDir: opts.OutputDir,
		phase:     models.PhaseIdle,
	}
}

// SelectFile records the image at path. An empty path clears the selection.
//
// Files that cannot be decoded as an image clear the selection and return [shared.ErrInvalidImage].
func (c *Controller) SelectFile(path string) (*models.SelectedFile, error) {
	if path == "" {
		c.setSelected(nil)
		return nil, nil
	}

	file, err := inspectImage(path)
	if err != nil {
		c.setSelected(nil)
		return nil, err
	}

	c.setSelected(file)
	c.logger.Debug("file selected", "name", file.Name, "format", file.Format, "size", file.Size)
	return file, nil
}

func inspectImage(path string) (*models.SelectedFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", shared.ErrInvalidArgument, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	defer f.Close()

	_, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrInvalidImage, filepath.Base(path), err)
	}

	return &models.SelectedFile{
		Path:        path,
		Name:        filepath.Base(path),
		Size:        info.Size(),
		Format:      format,
		ContentType: "image/" + format,
	}, nil
}

func (c *Controller) setSelected(file *models.SelectedFile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = file
}

// Selected returns a copy of the selected file or nil.
func (c *Controller) Selected() *models.SelectedFile {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		return nil
	}
	file := *c.selected
	return &file
}

// FileLabel is the display name of the selection or [NoFileLabel].
func (c *Controller) FileLabel() string {
	if file := c.Selected(); file != nil {
		return file.Name
	}
	return NoFileLabel
}

// CanUpload reports whether the upload trigger is enabled: a file is selected and no session is in flight.
func (c *Controller) CanUpload() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected != nil && !c.active
}

// Phase returns the current session phase.
func (c *Controller) Phase() models.Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Percent returns the last reported upload percentage.
func (c *Controller) Percent() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.percent
}

// Modal returns the result dialog state.
func (c *Controller) Modal() Modal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.modal
}

// Result returns the result currently shown in the modal, or nil.
func (c *Controller) Result() *Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// Upload runs one session for the selected file, reporting progress on updates (which may be nil).
//
// It returns [shared.ErrNoFileSelected] or [shared.ErrUploadInProgress] without sending any request.
// The upload itself is never retried; a 401 triggers exactly one re-authentication.
func (c *Controller) Upload(ctx context.Context, updates chan<- ProgressUpdate) (*Result, error) {
	file, err := c.begin()
	if err != nil {
		return nil, err
	}

	started := time.Now()
	run := &progressRun{updates: updates, onProcessing: func() { c.setPhase(models.PhaseProcessing) }}

	result, record, err := c.upload(ctx, file, run)
	record.Duration = time.Since(started)

	final := ProgressUpdate{Phase: models.PhaseSuccess, Percent: c.Percent()}
	if err != nil {
		final = ProgressUpdate{Phase: models.PhaseError, Percent: c.Percent(), Message: AlertMessage(err)}
	}
	run.finish(final)

	c.end(result)
	c.recordHistory(record)

	return result, err
}

func (c *Controller) begin() (models.SelectedFile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.selected == nil {
		return models.SelectedFile{}, shared.ErrNoFileSelected
	}
	if c.active {
		return models.SelectedFile{}, shared.ErrUploadInProgress
	}

	c.active = true
	c.percent = 0
	return *c.selected, nil
}

func (c *Controller) end(result *Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.active = false
	c.phase = models.PhaseIdle
	if result == nil {
		return
	}

	if c.result != nil {
		if err := c.result.release(); err != nil {
			c.logger.Warn("failed to release previous result", "err", err)
		}
	}
	c.result = result
	c.modal = Modal{Active: true, ImageSource: result.URI(), DownloadTarget: result.URI()}
}

func (c *Controller) setPhase(p models.Phase) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.phase = p
}

func (c *Controller) setPercent(pct int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.percent = pct
}

func (c *Controller) upload(ctx context.Context, file models.SelectedFile, run *progressRun) (*Result, *models.UploadRecord, error) {
	record := models.NewUploadRecord(file.Name, file.Size, models.UploadSucceeded)
	logger := c.logger.With("file", file.Name)

	var token *oauth2.Token
	if c.session != nil {
		if !c.session.HasToken() {
			if _, err := c.session.Authenticate(ctx); err != nil {
				record.Status = models.UploadAuthFailed
				record.Message = err.Error()
				return nil, record, err
			}
		}
		token = c.session.Token()
	}

	c.setPhase(models.PhaseUploading)
	run.send(ProgressUpdate{Phase: models.PhaseUploading, Percent: 0})
	logger.Info("uploading", "size", file.Size)

	progress := func(pct int) {
		c.setPercent(pct)
		run.send(ProgressUpdate{Phase: models.PhaseUploading, Percent: pct})
		if pct >= 100 {
			run.processingAfter(c.delay)
		}
	}

	out := c.remover.RemoveBackground(ctx, file, token, progress)
	record.StatusCode = out.StatusCode

	switch {
	case out.Kind == services.OutcomeSuccess:
		result, err := createResult(c.tempDir, file.Name, out.Image)
		if err != nil {
			logger.Error("failed to hold result", "err", err)
			record.Status = models.UploadErrored
			record.Message = err.Error()
			return nil, record, fmt.Errorf("%w: %v", shared.ErrUnexpected, err)
		}
		logger.Info("background removed", "bytes", result.Size)
		return result, record, nil

	case out.Kind == services.OutcomeAuthExpired && c.session != nil:
		record.Status = models.UploadAuthExpired
		logger.Warn("token rejected, re-authenticating")
		if _, err := c.session.Authenticate(ctx); err != nil {
			record.Message = err.Error()
			return nil, record, fmt.Errorf("%w: %v", shared.ErrReauthFailed, err)
		}
		return nil, record, shared.ErrSessionExpired

	case out.Kind == services.OutcomeTransportError:
		record.Status = models.UploadTransportFail
		record.Message = out.Err.Error()
		logger.Warn("upload failed", "err", out.Err)
		return nil, record, fmt.Errorf("%w: %v", shared.ErrUploadFailed, out.Err)

	default:
		record.Status = models.UploadRejected
		record.Message = out.Message
		logger.Warn("upload rejected", "status", out.StatusCode)
		return nil, record, fmt.Errorf("%w: status %d", shared.ErrRejected, out.StatusCode)
	}
}

func (c *Controller) recordHistory(record *models.UploadRecord) {
	if c.history == nil {
		return
	}
	if err := c.history.Record(record); err != nil {
		c.logger.Warn("failed to record upload", "err", err)
	}
}

// CloseResult deactivates the modal and releases the result file.
//
// It reports false and does nothing when the modal is not active.
func (c *Controller) CloseResult(reason DismissReason) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.modal.Active {
		return false
	}

	if c.result != nil {
		if err := c.result.release(); err != nil {
			c.logger.Warn("failed to release result", "err", err)
		}
	}
	c.result = nil
	c.modal = Modal{}
	c.logger.Debug("result closed", "via", reason)
	return true
}

// SaveResult copies the result to dest, or to the output directory under its default name when dest is empty.
func (c *Controller) SaveResult(dest string) (string, error) {
	result := c.Result()
	if result == nil {
		return "", shared.ErrNoResult
	}
	if dest == "" {
		dest = filepath.Join(c.outputDir, result.DefaultName())
	}

	saved, err := result.saveTo(dest)
	if err != nil {
		return "", err
	}
	c.logger.Info("result saved", "path", saved)
	return saved, nil
}

// Close releases any result still held.
func (c *Controller) Close() {
	c.CloseResult(DismissButton)
}

// AlertMessage maps an upload error to the text of the blocking alert. Errors that need no alert map to "".
func AlertMessage(err error) string {
	switch {
	case err == nil,
		errors.Is(err, shared.ErrNoFileSelected),
		errors.Is(err, shared.ErrUploadInProgress):
		return ""
	case errors.Is(err, shared.ErrSessionExpired):
		return "Session expired. Please try again."
	case errors.Is(err, shared.ErrReauthFailed):
		return "Authentication failed. Please restart cutout and try again."
	case errors.Is(err, shared.ErrAuthFailed):
		return "Authentication failed. Please try again."
	case errors.Is(err, shared.ErrRejected):
		return "Error processing image. Please try again."
	case errors.Is(err, shared.ErrUploadFailed):
		return "Upload failed. Please try again."
	case errors.Is(err, shared.ErrInvalidImage):
		return "Please choose an image file."
	default:
		return "An error occurred. Please try again."
	}
}

// progressRun delivers the updates of one session and owns its processing timer.
type progressRun struct {
	mu           sync.Mutex
	updates      chan<- ProgressUpdate
	timer        *time.Timer
	done         bool
	onProcessing func()
}

func (r *progressRun) send(u ProgressUpdate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.done {
		r.deliver(u)
	}
}

// deliver never blocks: a full channel drops the update.
func (r *progressRun) deliver(u ProgressUpdate) {
	if r.updates == nil {
		return
	}
	select {
	case r.updates <- u:
	default:
	}
}

func (r *progressRun) processingAfter(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done || r.timer != nil {
		return
	}

	r.timer = time.AfterFunc(d, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.done {
			return
		}
		r.onProcessing()
		r.deliver(ProgressUpdate{Phase: models.PhaseProcessing, Percent: 100})
	})
}

// finish cancels a pending processing timer and delivers the terminal update.
func (r *progressRun) finish(u ProgressUpdate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
	}
	r.deliver(u)
	r.done = true
}
