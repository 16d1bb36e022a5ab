// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"io"
	"log/slog"
	"testing"

	"github.com/Tomlord1122/todo-web/internal/config"
	"github.com/Tomlord1122/todo-web/internal/database"
)

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewDatabase opens a migrated in-memory SQLite database that is closed when t ends.
func NewDatabase(t *testing.T) database.Service {
	t.Helper()

	db, err := database.New(config.DBConfig{
		Driver:     database.DriverSQLite,
		SQLitePath: ":memory:",
	}, DiscardLogger())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close sqlite: %v", err)
		}
	})

	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}
