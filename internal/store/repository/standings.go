package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/fortuna/apex/internal/standings"
	"github.com/fortuna/apex/internal/store"
)

// StandingsRepository handles persisted snapshot access
type StandingsRepository struct {
	db *store.Database
}

// NewStandingsRepository creates a new standings repository
func NewStandingsRepository(db *store.Database) *StandingsRepository {
	return &StandingsRepository{db: db}
}

// SaveSnapshot persists one round's snapshot. Snapshots are write-once per
// (season, round); re-folding overwrites the stored copy.
func (r *StandingsRepository) SaveSnapshot(ctx context.Context, season int, snap *standings.Snapshot) error {
	blob, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	query := `
		INSERT INTO standings_snapshots (season, round, snapshot)
		VALUES ($1, $2, $3)
		ON CONFLICT (season, round) DO UPDATE SET snapshot = EXCLUDED.snapshot
	`
	if _, err := r.db.DB().ExecContext(ctx, query, season, snap.Round, blob); err != nil {
		return fmt.Errorf("upserting snapshot: %w", err)
	}
	return nil
}

// GetSnapshot returns the standings snapshot after the given round.
func (r *StandingsRepository) GetSnapshot(ctx context.Context, season, round int) (*standings.Snapshot, error) {
	query := `SELECT snapshot FROM standings_snapshots WHERE season = $1 AND round = $2`

	var blob []byte
	err := r.db.DB().QueryRowContext(ctx, query, season, round).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no snapshot for season %d round %d", season, round)
	}
	if err != nil {
		return nil, fmt.Errorf("querying snapshot: %w", err)
	}

	snap := &standings.Snapshot{}
	if err := json.Unmarshal(blob, snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return snap, nil
}

// LatestRound returns the highest round with a persisted snapshot, or 0
// when the season has no snapshots yet.
func (r *StandingsRepository) LatestRound(ctx context.Context, season int) (int, error) {
	query := `SELECT COALESCE(MAX(round), 0) FROM standings_snapshots WHERE season = $1`

	var round int
	if err := r.db.DB().QueryRowContext(ctx, query, season).Scan(&round); err != nil {
		return 0, fmt.Errorf("querying latest round: %w", err)
	}
	return round, nil
}
