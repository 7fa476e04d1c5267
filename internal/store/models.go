package store

import (
	"database/sql"
	"time"
)

// RaceResultRow is one persisted results-table row for a session
type RaceResultRow struct {
	ID             int             `json:"id" db:"id"`
	Season         int             `json:"season" db:"season"`
	Round          int             `json:"round" db:"round"`
	SessionType    string          `json:"session_type" db:"session_type"`
	DriverID       string          `json:"driver_id" db:"driver_id"`
	DriverName     string          `json:"driver_name" db:"driver_name"`
	Constructor    string          `json:"constructor" db:"constructor"`
	GridPosition   int             `json:"grid_position" db:"grid_position"`
	FinishPosition sql.NullInt32   `json:"finish_position,omitempty" db:"finish_position"`
	Status         string          `json:"status" db:"status"`
	LapsCompleted  int             `json:"laps_completed" db:"laps_completed"`
	Points         int             `json:"points" db:"points"`
	BestLap        sql.NullFloat64 `json:"best_lap,omitempty" db:"best_lap"`
	AvgSpeedKph    sql.NullFloat64 `json:"avg_speed_kph,omitempty" db:"avg_speed_kph"`
	GapToWinner    string          `json:"gap_to_winner" db:"gap_to_winner"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// SnapshotRow is one persisted standings snapshot, stored as JSONB so the
// snapshot shape can evolve without a schema migration
type SnapshotRow struct {
	ID        int       `json:"id" db:"id"`
	Season    int       `json:"season" db:"season"`
	Round     int       `json:"round" db:"round"`
	Snapshot  []byte    `json:"snapshot" db:"snapshot"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
