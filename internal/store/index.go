// Package store keeps a local sqlite history of runs: the Progress document each command produced
// and the export events raised while it ran.
package store

import (
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/turbot/pipe-fittings/perr"

	_ "github.com/mattn/go-sqlite3"
)

const timeLayout = "2006-01-02T15:04:05.000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		slog.Debug("unable to parse stored time", "value", s, "error", err)
		return time.Time{}
	}
	return t
}

// HistoryDB is a handle on the history database file. Every operation opens and closes its own
// connection, so a HistoryDB is safe to share.
type HistoryDB struct {
	path string
}

func NewHistoryDB(path string) *HistoryDB {
	return &HistoryDB{path: path}
}

func (h *HistoryDB) Path() string {
	return h.path
}

// Initialize creates the database file and its tables if they do not exist yet.
func (h *HistoryDB) Initialize() error {
	if dir := filepath.Dir(h.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			slog.Error("error creating history directory", "dir", dir, "error", err)
			return perr.InternalWithMessage("error creating history directory " + dir)
		}
	}

	db, err := h.Open()
	if err != nil {
		return err
	}
	defer db.Close()

	createTableSQL := `create table if not exists run (
		id integer primary key autoincrement,
		run_id text,
		command text,
		state text,
		alerts integer,
		progress text,
		created_at datetime,
		updated_at datetime
	)`

	_, err = db.Exec(createTableSQL)
	if err != nil {
		slog.Error("error creating run table", "error", err)
		return perr.InternalWithMessage("error creating run table")
	}

	createIndexSQL := `create unique index if not exists idx_run_run_id on run(run_id)`
	_, err = db.Exec(createIndexSQL)
	if err != nil {
		slog.Error("error creating run index", "error", err)
		return perr.InternalWithMessage("error creating run index")
	}

	createTableSQL = `
	create table if not exists export_event (
		id integer primary key autoincrement,
		run_id text,
		created_at datetime,
		type text,
		data text,
		constraint fk_export_event_run_id foreign key (run_id) references run(run_id) on delete cascade
	)`

	_, err = db.Exec(createTableSQL)
	if err != nil {
		slog.Error("error creating export_event table", "error", err)
		return perr.InternalWithMessage("error creating export_event table")
	}

	createIndexSQL = `create index if not exists idx_export_event_run_id on export_event (run_id);`
	_, err = db.Exec(createIndexSQL)
	if err != nil {
		slog.Error("error creating export_event index", "error", err)
		return perr.InternalWithMessage("error creating export_event index")
	}

	return nil
}

func (h *HistoryDB) Open() (*sql.DB, error) {
	db, err := sql.Open("sqlite3", h.path+"?_foreign_keys=on")
	if err != nil {
		return nil, perr.InternalWithMessage("Error opening SQLite database " + err.Error())
	}

	// Enable foreign key constraints
	_, err = db.Exec("PRAGMA foreign_keys=ON")
	if err != nil {
		slog.Error("error enabling foreign key constraints", "error", err)
		db.Close()
		return nil, perr.InternalWithMessage("error enabling foreign key constraints")
	}

	// Note: do not close the db connection here. The caller is responsible for closing it.
	return db, nil
}
