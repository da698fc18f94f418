package shared

import (
	"database/sql"
	"errors"
	"testing"
)

func migratedDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func appliedVersions(t *testing.T, db *sql.DB) int {
	t.Helper()
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("failed to query schema_migrations: %v", err)
	}
	return count
}

func TestMigrations(t *testing.T) {
	t.Run("Embedded Files Pair Up", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}
		if len(migrations) == 0 || migrations[0].Version != 0 {
			t.Fatalf("expected the initial schema as version 0, got %+v", migrations)
		}
		for i := 1; i < len(migrations); i++ {
			if migrations[i].Version <= migrations[i-1].Version {
				t.Errorf("version %d sorted after %d", migrations[i].Version, migrations[i-1].Version)
			}
		}
	})

	t.Run("Schema", func(t *testing.T) {
		db := migratedDB(t)

		var next int
		if err := db.QueryRow("SELECT value FROM uploads_sequence WHERE id = 1").Scan(&next); err != nil {
			t.Fatalf("sequence row should be seeded: %v", err)
		}
		if next != 0 {
			t.Errorf("expected sequence to start at 0, got %d", next)
		}

		if _, err := db.Exec("INSERT INTO settings (key, value) VALUES ('authToken', 'abc')"); err != nil {
			t.Errorf("settings should accept the token row: %v", err)
		}
		if _, err := db.Exec("INSERT INTO uploads_sequence (id, value) VALUES (2, 0)"); err == nil {
			t.Error("sequence table should hold a single row")
		}
	})

	t.Run("Rerun Is A No-op", func(t *testing.T) {
		db := migratedDB(t)
		before := appliedVersions(t, db)

		if err := RunMigrations(db); err != nil {
			t.Fatalf("second run failed: %v", err)
		}
		if after := appliedVersions(t, db); after != before {
			t.Errorf("expected %d applied versions, got %d", before, after)
		}
	})

	t.Run("Rollback", func(t *testing.T) {
		db := migratedDB(t)

		if err := RollbackMigration(db); err != nil {
			t.Fatalf("failed to roll back: %v", err)
		}
		if n := appliedVersions(t, db); n != 0 {
			t.Errorf("expected no applied versions, got %d", n)
		}
		if _, err := db.Exec("SELECT 1 FROM uploads"); err == nil {
			t.Error("uploads table should be dropped")
		}
		if err := RollbackMigration(db); err == nil {
			t.Error("expected error with nothing left to roll back")
		}
	})

	t.Run("Failed Bookkeeping Undoes Statements", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		boom := errors.New("boom")
		err = execMigration(db, "CREATE TABLE scratch (id INTEGER);", func(*sql.Tx) error { return boom })
		if !errors.Is(err, boom) {
			t.Fatalf("expected bookkeeping error, got %v", err)
		}
		if _, err := db.Exec("SELECT 1 FROM scratch"); err == nil {
			t.Error("scratch table should not survive a failed migration")
		}
	})
}

func TestRemoveComments(t *testing.T) {
	tc := []struct {
		name, in, want string
	}{
		{"plain", "SELECT 1", "SELECT 1"},
		{"leading comment", "-- settings table\nCREATE TABLE t (id INTEGER)", "CREATE TABLE t (id INTEGER)"},
		{"trailing comment", "SELECT 1 -- one", "SELECT 1"},
		{"only comments", "-- a\n   \n-- b", ""},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := removeComments(tt.in); got != tt.want {
				t.Errorf("removeComments(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
