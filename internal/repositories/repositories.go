// package repositories provides SQLite persistence for tokens and upload history
package repositories

import (
	"database/sql"
	"fmt"
)

// inTx runs fn inside a transaction, committing only when fn succeeds.
func inTx(db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// NextSequence bumps the counter in "<table>_sequence" and returns the new value.
//
// It runs on the caller's transaction so a failed insert never consumes a number: history reads as
// upload #1, #2, #3 with no gaps.
func NextSequence(tx *sql.Tx, table string) (int, error) {
	var sequence int
	query := fmt.Sprintf("UPDATE %s_sequence SET value = value + 1 WHERE id = 1 RETURNING value", table)
	if err := tx.QueryRow(query).Scan(&sequence); err != nil {
		return 0, fmt.Errorf("failed to advance %s sequence: %w", table, err)
	}
	return sequence, nil
}
