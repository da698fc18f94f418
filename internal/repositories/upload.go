package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/cutout/internal/models"
	"github.com/desertthunder/cutout/internal/shared"
)

var _ models.Repository[*models.UploadRecord] = (*UploadRepository)(nil)

// UploadRepository implements [models.Repository] for [models.UploadRecord] persistence.
type UploadRepository struct {
	db *sql.DB
}

// NewUploadRepository creates a new [UploadRepository] with the given database connection
func NewUploadRepository(db *sql.DB) *UploadRepository {
	return &UploadRepository{db: db}
}

// Create inserts a new upload record with generated ID and sequence
func (r *UploadRepository) Create(record *models.UploadRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	id := shared.GenerateID()
	var message any = record.Message
	if record.Message == "" {
		message = nil
	}

	var sequence int
	err := inTx(r.db, func(tx *sql.Tx) error {
		var err error
		if sequence, err = NextSequence(tx, "uploads"); err != nil {
			return err
		}

		_, err = tx.Exec(`
			INSERT INTO uploads (id, sequence, file_name, file_size, status, status_code, message, duration_ms, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			id, sequence, record.FileName, record.FileSize, string(record.Status), record.StatusCode,
			message, record.Duration.Milliseconds(), record.CreatedAt(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert upload: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	record.SetID(id)
	record.SetSequence(sequence)
	return nil
}

// Get retrieves an upload record by ID
func (r *UploadRepository) Get(id string) (*models.UploadRecord, error) {
	query := `
		SELECT id, sequence, file_name, file_size, status, status_code, message, duration_ms, created_at
		FROM uploads
		WHERE id = ?
	`

	record, err := scanUpload(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("upload not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query upload: %w", err)
	}
	return record, nil
}

// List returns up to limit records, newest first. A non-positive limit returns everything.
func (r *UploadRepository) List(limit int) ([]*models.UploadRecord, error) {
	query := `
		SELECT id, sequence, file_name, file_size, status, status_code, message, duration_ms, created_at
		FROM uploads
		ORDER BY sequence DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query uploads: %w", err)
	}
	defer rows.Close()

	var records []*models.UploadRecord
	for rows.Next() {
		record, err := scanUpload(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan upload: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating uploads: %w", err)
	}

	return records, nil
}

// Record implements the history hook used by the upload controller.
func (r *UploadRepository) Record(record *models.UploadRecord) error {
	return r.Create(record)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUpload(s scanner) (*models.UploadRecord, error) {
	var (
		id         string
		sequence   int
		fileName   string
		fileSize   int64
		status     string
		statusCode int
		message    sql.NullString
		durationMS int64
		createdAt  time.Time
	)

	if err := s.Scan(&id, &sequence, &fileName, &fileSize, &status, &statusCode, &message, &durationMS, &createdAt); err != nil {
		return nil, err
	}

	record := models.NewUploadRecord(fileName, fileSize, models.UploadStatus(status))
	record.SetID(id)
	record.SetSequence(sequence)
	record.SetCreatedAt(createdAt)
	record.StatusCode = statusCode
	record.Duration = time.Duration(durationMS) * time.Millisecond
	if message.Valid {
		record.Message = message.String
	}
	return record, nil
}
