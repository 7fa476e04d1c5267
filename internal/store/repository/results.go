package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fortuna/apex/internal/results"
	"github.com/fortuna/apex/internal/store"
)

// ResultsRepository handles persisted results-table access
type ResultsRepository struct {
	db *store.Database
}

// NewResultsRepository creates a new results repository
func NewResultsRepository(db *store.Database) *ResultsRepository {
	return &ResultsRepository{db: db}
}

// UpsertTable persists every row of a session's results table in one
// transaction. Re-folding a round overwrites its rows rather than
// duplicating them.
func (r *ResultsRepository) UpsertTable(ctx context.Context, table *results.Table) error {
	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO race_results (
			season, round, session_type, driver_id, driver_name, constructor,
			grid_position, finish_position, status, laps_completed, points,
			best_lap, avg_speed_kph, gap_to_winner
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (season, round, session_type, driver_id) DO UPDATE SET
			driver_name = EXCLUDED.driver_name,
			constructor = EXCLUDED.constructor,
			grid_position = EXCLUDED.grid_position,
			finish_position = EXCLUDED.finish_position,
			status = EXCLUDED.status,
			laps_completed = EXCLUDED.laps_completed,
			points = EXCLUDED.points,
			best_lap = EXCLUDED.best_lap,
			avg_speed_kph = EXCLUDED.avg_speed_kph,
			gap_to_winner = EXCLUDED.gap_to_winner
	`

	for _, row := range table.Rows {
		finish := sql.NullInt32{}
		if row.FinishPosition > 0 {
			finish = sql.NullInt32{Int32: int32(row.FinishPosition), Valid: true}
		}
		bestLap := sql.NullFloat64{}
		if row.BestLap != nil {
			bestLap = sql.NullFloat64{Float64: *row.BestLap, Valid: true}
		}
		avgSpeed := sql.NullFloat64{}
		if row.AvgSpeedKph > 0 {
			avgSpeed = sql.NullFloat64{Float64: row.AvgSpeedKph, Valid: true}
		}

		_, err := tx.ExecContext(ctx, query,
			table.Key.Season, table.Key.Round, string(table.Key.Type),
			row.DriverID, row.DriverName, row.Constructor,
			row.GridPosition, finish, row.Status, row.LapsCompleted, row.Points,
			bestLap, avgSpeed, row.Gap,
		)
		if err != nil {
			return fmt.Errorf("upserting result for %s: %w", row.DriverID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing results: %w", err)
	}
	return nil
}

// GetByRound returns the persisted rows for one session in table order.
func (r *ResultsRepository) GetByRound(ctx context.Context, season, round int, sessionType string) ([]*store.RaceResultRow, error) {
	query := `
		SELECT id, season, round, session_type, driver_id, driver_name, constructor,
			grid_position, finish_position, status, laps_completed, points,
			best_lap, avg_speed_kph, gap_to_winner, created_at
		FROM race_results
		WHERE season = $1 AND round = $2 AND session_type = $3
		ORDER BY finish_position NULLS LAST, laps_completed DESC, driver_id
	`

	rows, err := r.db.DB().QueryContext(ctx, query, season, round, sessionType)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	var out []*store.RaceResultRow
	for rows.Next() {
		row := &store.RaceResultRow{}
		err := rows.Scan(
			&row.ID, &row.Season, &row.Round, &row.SessionType,
			&row.DriverID, &row.DriverName, &row.Constructor,
			&row.GridPosition, &row.FinishPosition, &row.Status,
			&row.LapsCompleted, &row.Points,
			&row.BestLap, &row.AvgSpeedKph, &row.GapToWinner, &row.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning result row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
