package store

import (
	"log/slog"
	"time"

	"github.com/turbot/pipe-fittings/perr"
)

type EventRecord struct {
	RunID     string    `json:"run_id"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	Data      string    `json:"data"`
}

// RecordEvent appends an export event. The run must already be recorded.
func (h *HistoryDB) RecordEvent(runID, eventType string, createdAt time.Time, data []byte) error {
	db, err := h.Open()
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.Exec("insert into export_event (run_id, created_at, type, data) values (?, ?, ?, ?)",
		runID, formatTime(createdAt), eventType, string(data))
	if err != nil {
		slog.Error("error recording event", "run_id", runID, "type", eventType, "error", err)
		return perr.InternalWithMessage("error recording event")
	}
	return nil
}

// ListEvents returns the events of a run in the order they were recorded.
func (h *HistoryDB) ListEvents(runID string) ([]EventRecord, error) {
	db, err := h.Open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query("select type, created_at, data from export_event where run_id = ? order by id", runID)
	if err != nil {
		slog.Error("error querying events", "run_id", runID, "error", err)
		return nil, perr.InternalWithMessage("error querying events")
	}
	defer rows.Close()

	events := []EventRecord{}
	for rows.Next() {
		e := EventRecord{RunID: runID}
		var createdAt string
		if err := rows.Scan(&e.Type, &createdAt, &e.Data); err != nil {
			slog.Error("error scanning event", "error", err)
			return nil, perr.InternalWithMessage("error scanning event")
		}
		e.CreatedAt = parseTime(createdAt)
		events = append(events, e)
	}
	return events, rows.Err()
}
