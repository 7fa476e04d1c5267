// Package analysis derives per-driver chart series from normalized sessions.
// Everything here is a pure computation over already-resident data.
package analysis

import (
	"github.com/fortuna/apex/internal/timing"
)

// PositionSample is one point of a driver's position trace. Lap 0 carries the
// grid slot so charts show the start line, not just the end of lap 1.
type PositionSample struct {
	Lap      int  `json:"lap"`
	Position int  `json:"position"`
	Filled   bool `json:"filled,omitempty"`
}

// Progression maps driver ID to their ordered position trace.
type Progression map[string][]PositionSample

// BuildProgression derives the lap-by-lap position trace for the selected
// drivers. A nil or empty selection means every classified entrant.
//
// A did-not-start driver yields an empty trace rather than an error. A driver
// who retires on lap N yields a trace that stops at lap N: continuing them at
// a frozen position would misrepresent a parked car as still racing.
func BuildProgression(s *timing.Session, drivers []string) Progression {
	if len(drivers) == 0 {
		for _, e := range s.Classification {
			drivers = append(drivers, e.DriverID)
		}
	}

	prog := make(Progression, len(drivers))
	for _, id := range drivers {
		prog[id] = driverTrace(s, id)
	}
	return prog
}

func driverTrace(s *timing.Session, driverID string) []PositionSample {
	if s.DriverStatus(driverID) == timing.StatusDidNotStart {
		return nil
	}

	var trace []PositionSample

	// Lap 0 is the grid slot, when the classification knows it.
	if e, ok := s.Entrant(driverID); ok && e.GridPosition > 0 {
		trace = append(trace, PositionSample{Lap: 0, Position: e.GridPosition})
	}

	for _, l := range s.DriverLaps(driverID) {
		trace = append(trace, PositionSample{
			Lap:      l.Lap,
			Position: l.Position,
			Filled:   l.Filled,
		})
	}
	return trace
}
