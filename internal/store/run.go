package store

import (
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/turbot/pipe-fittings/perr"

	"github.com/turbot/adfupgrade/internal/types"
)

type Run struct {
	RunID     string              `json:"run_id"`
	Command   string              `json:"command"`
	State     types.ProgressState `json:"state"`
	Alerts    int                 `json:"alerts"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
	Progress  *types.Progress     `json:"progress,omitempty"`
}

// RecordRun stores the progress produced by a command. Recording the same run id again replaces
// the stored progress and keeps the original creation time.
func (h *HistoryDB) RecordRun(runID, command string, p *types.Progress) error {
	data, err := p.Marshal()
	if err != nil {
		return perr.InternalWithMessage("unable to serialize progress: " + err.Error())
	}

	db, err := h.Open()
	if err != nil {
		return err
	}
	defer db.Close()

	now := formatTime(time.Now())
	_, err = db.Exec(`insert into run (run_id, command, state, alerts, progress, created_at, updated_at)
		values (?, ?, ?, ?, ?, ?, ?)
		on conflict(run_id) do update set command = excluded.command, state = excluded.state,
			alerts = excluded.alerts, progress = excluded.progress, updated_at = excluded.updated_at`,
		runID, command, string(p.State), len(p.Alerts), string(data), now, now)
	if err != nil {
		slog.Error("error recording run", "run_id", runID, "error", err)
		return perr.InternalWithMessage("error recording run")
	}

	slog.Debug("run recorded", "run_id", runID, "command", command, "state", p.State)
	return nil
}

// ListRuns returns the recorded runs, newest first, without their progress documents.
func (h *HistoryDB) ListRuns() ([]Run, error) {
	db, err := h.Open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query("select run_id, command, state, alerts, created_at, updated_at from run order by id desc")
	if err != nil {
		slog.Error("error querying runs", "error", err)
		return nil, perr.InternalWithMessage("error querying runs")
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		var state, createdAt, updatedAt string
		err = rows.Scan(&r.RunID, &r.Command, &state, &r.Alerts, &createdAt, &updatedAt)
		if err != nil {
			slog.Error("error scanning run", "error", err)
			return nil, perr.InternalWithMessage("error scanning run")
		}
		r.State = types.ProgressState(state)
		r.CreatedAt = parseTime(createdAt)
		r.UpdatedAt = parseTime(updatedAt)
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// GetRun loads a single run including its progress document.
func (h *HistoryDB) GetRun(runID string) (*Run, error) {
	db, err := h.Open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	r := &Run{RunID: runID}
	var state, progress, createdAt, updatedAt string
	err = db.QueryRow("select command, state, alerts, progress, created_at, updated_at from run where run_id = ?", runID).
		Scan(&r.Command, &state, &r.Alerts, &progress, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, perr.NotFoundWithMessage("run not found: " + runID)
	}
	if err != nil {
		slog.Error("error querying run", "run_id", runID, "error", err)
		return nil, perr.InternalWithMessage("error querying run")
	}

	r.State = types.ProgressState(state)
	r.CreatedAt = parseTime(createdAt)
	r.UpdatedAt = parseTime(updatedAt)
	r.Progress = types.ParseProgress([]byte(progress))
	return r, nil
}
