package store

import (
	"log/slog"
	"time"

	"github.com/turbot/pipe-fittings/perr"
)

// Cleanup removes runs last updated before currentTime+offset, together with their events.
func (h *HistoryDB) Cleanup(currentTime time.Time, offset time.Duration) (int, error) {
	slog.Debug("Cleaning up history db")
	db, err := h.Open()
	if err != nil {
		slog.Error("error opening history db", "error", err)
		return -1, perr.InternalWithMessage("error opening history db")
	}
	defer db.Close()

	timeLimit := formatTime(currentTime.Add(offset))

	result, err := db.Exec("delete from run where updated_at < ?", timeLimit)
	if err != nil {
		slog.Error("error cleaning up history db", "error", err)
		return -1, perr.InternalWithMessage("error cleaning up history db")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		slog.Error("error cleaning up history db", "error", err)
		return -1, perr.InternalWithMessage("error cleaning up history db")
	}

	slog.Debug("Cleaned up history db", "rowsAffected", rowsAffected)
	return int(rowsAffected), nil
}
