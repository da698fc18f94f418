package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cutout/internal/repositories"
	"github.com/desertthunder/cutout/internal/services"
	"github.com/desertthunder/cutout/internal/shared"
	"github.com/desertthunder/cutout/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	db         *sql.DB
	ownsDB     bool
	openFile   func(string) error
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	// DB replaces the database named in Config; the runner does not close it.
	DB *sql.DB
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Config.Server.Timeout()}
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		db:         opts.DB,
		openFile:   shared.OpenFile,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, uploadCommand, historyCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger used by commands and the collaborators they build.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// database opens and migrates the configured database on first use.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.OpenMigrated(r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", r.config.Database.Path, err)
	}
	r.db = db
	r.ownsDB = true
	return db, nil
}

func (r *Runner) client() *services.Client {
	return services.NewClient(r.config.Server.BaseURL, r.httpClient).
		WithPaths(r.config.Server.TokenPath, r.config.Server.RemovePath).
		WithProgressRate(r.config.Upload.ProgressRate)
}

// tokenStore returns the persistent token store, or an in-memory one when ephemeral is set.
func (r *Runner) tokenStore(ephemeral bool) (services.TokenStore, error) {
	if ephemeral {
		return services.NewMemoryTokenStore(""), nil
	}
	db, err := r.database()
	if err != nil {
		return nil, err
	}
	return repositories.NewTokenRepository(db), nil
}

// session loads the cached token. It returns nil when auth is disabled.
func (r *Runner) session(client *services.Client, store services.TokenStore) *services.Session {
	if !r.config.Auth.Enabled {
		return nil
	}

	creds := services.StaticCredentials{
		Username: r.config.Credentials.Username,
		Password: r.config.Credentials.Password,
	}
	session := services.NewSession(client, store, creds, r.logger)
	if err := session.Load(); err != nil {
		r.logger.Warn("ignoring unreadable token", "err", err)
	}
	return session
}

// controller wires a [tasks.Controller]. history may be nil.
func (r *Runner) controller(ephemeral bool) (*tasks.Controller, *repositories.UploadRepository, error) {
	if err := r.config.Validate(); err != nil {
		return nil, nil, err
	}

	client := r.client()
	store, err := r.tokenStore(ephemeral)
	if err != nil {
		return nil, nil, err
	}
	session := r.session(client, store)

	var history *repositories.UploadRepository
	opts := tasks.ControllerOpts{
		Session:         session,
		Remover:         client,
		Logger:          r.logger,
		ProcessingDelay: r.config.Upload.ProcessingDelay(),
		OutputDir:       r.config.Upload.OutputDir,
	}
	if !ephemeral {
		history = repositories.NewUploadRepository(r.db)
		opts.History = history
	}

	return tasks.NewController(opts), history, nil
}

// Close releases the database opened by the runner.
func (r *Runner) Close() error {
	if r.db == nil || !r.ownsDB {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
