package season

import (
	"encoding/json"

	"github.com/fortuna/apex/internal/standings"
)

// StandingsEvent is the websocket payload pushed after each fold step.
type StandingsEvent struct {
	Type     string              `json:"type"`
	Season   int                 `json:"season"`
	Round    int                 `json:"round"`
	Snapshot *standings.Snapshot `json:"snapshot"`
}

func encodeStandingsEvent(season int, snap *standings.Snapshot) ([]byte, error) {
	return json.Marshal(StandingsEvent{
		Type:     "standings_update",
		Season:   season,
		Round:    snap.Round,
		Snapshot: snap,
	})
}
