package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/cutout/internal/formatter"
	"github.com/desertthunder/cutout/internal/models"
	"github.com/desertthunder/cutout/internal/shared"
	"github.com/desertthunder/cutout/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Upload removes the background of one image, printing progress, and saves the result.
func (r *Runner) Upload(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: image path is required", shared.ErrMissingArgument)
	}

	ctrl, _, err := r.controller(cmd.Bool("no-store"))
	if err != nil {
		return err
	}
	defer ctrl.Close()

	file, err := ctrl.SelectFile(path)
	if err != nil {
		return err
	}
	r.writePlain("Uploading %s (%s)\n", file.Name, formatter.FormatBytes(file.Size))

	updates := make(chan tasks.ProgressUpdate, tasks.ProgressBuffer)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.printProgress(updates)
	}()

	_, err = ctrl.Upload(ctx, updates)
	close(updates)
	wg.Wait()

	if err != nil {
		if msg := tasks.AlertMessage(err); msg != "" {
			r.writePlain("✗ %s\n", msg)
		}
		return err
	}

	saved, err := ctrl.SaveResult(cmd.String("output"))
	if err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}
	r.writePlain("✓ Background removed\n")
	r.writePlain("Saved to: %s\n", saved)

	if cmd.Bool("open") {
		if err := r.openFile(saved); err != nil {
			r.logger.Warn("failed to open result", "path", saved, "err", err)
		}
	}
	return nil
}

// printProgress renders updates until the channel is closed.
func (r *Runner) printProgress(updates <-chan tasks.ProgressUpdate) {
	last := -1
	for u := range updates {
		switch u.Phase {
		case models.PhaseUploading:
			if u.Percent == last {
				continue
			}
			last = u.Percent
			r.writePlain("\r  %3d%%", u.Percent)
		case models.PhaseProcessing:
			r.writePlain("\n  Processing image...")
		case models.PhaseSuccess, models.PhaseError:
			r.writePlain("\n")
		}
	}
}
