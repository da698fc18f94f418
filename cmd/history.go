package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/cutout/internal/formatter"
	"github.com/desertthunder/cutout/internal/repositories"
	"github.com/desertthunder/cutout/internal/shared"
	"github.com/urfave/cli/v3"
)

// History lists recorded uploads, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	limit := cmd.Int("limit")
	if limit <= 0 {
		return fmt.Errorf("%w: --limit must be positive", shared.ErrInvalidArgument)
	}
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	db, err := r.database()
	if err != nil {
		return err
	}
	records, err := repositories.NewUploadRepository(db).List(limit)
	if err != nil {
		return err
	}
	r.logger.Debug("listing uploads", "count", len(records), "format", format)

	if out := cmd.String("output"); out != "" {
		if err := formatter.WriteExport(records, format, out); err != nil {
			return err
		}
		return r.writePlain("✓ Wrote %d uploads to %s\n", len(records), out)
	}

	data, err := formatter.Export(records, format)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
