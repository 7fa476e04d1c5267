// Package timing defines the canonical session data model and the pure
// normalization step that turns raw remote records into it.
package timing

import (
	"fmt"
)

// SessionType identifies one on-track activity within a round.
type SessionType string

const (
	SessionPractice   SessionType = "practice"
	SessionQualifying SessionType = "qualifying"
	SessionSprint     SessionType = "sprint"
	SessionRace       SessionType = "race"
)

// SessionKey uniquely identifies a session for caching and fetching.
type SessionKey struct {
	Season int         `json:"season"`
	Round  int         `json:"round"`
	Type   SessionType `json:"type"`
}

// String renders the key in the canonical "season/rNN/type" form used for
// cache rows, log lines and coalescing.
func (k SessionKey) String() string {
	return fmt.Sprintf("%d/r%02d/%s", k.Season, k.Round, k.Type)
}

// DriverStatus is the explicit per-driver status tag carried through every
// derived structure so consumers never infer intent from null values.
type DriverStatus string

const (
	StatusRunning       DriverStatus = "running"
	StatusRetired       DriverStatus = "retired"
	StatusNotClassified DriverStatus = "not-classified"
	StatusDidNotStart   DriverStatus = "did-not-start"
	StatusDisqualified  DriverStatus = "disqualified"
)

// RawLap is a single per-driver per-lap record as the remote source reports
// it. Position and lap time are nullable: a nil position means the telemetry
// sample was missed entirely, a nil time means the lap was untimed.
type RawLap struct {
	DriverID string
	Lap      int
	Time     *float64 // seconds
	Position *int
	Sector1  *float64
	Sector2  *float64
	Sector3  *float64
	PitIn    bool
	PitOut   bool
	Accurate bool
}

// Entrant is one row of the session-level classification list.
type Entrant struct {
	DriverID       string `json:"driver_id"`
	DriverName     string `json:"driver_name"`
	Constructor    string `json:"constructor"`
	GridPosition   int    `json:"grid_position"`
	FinishPosition int    `json:"finish_position"` // 0 for non-finishers
	Status         string `json:"status"`          // finished, retired, dns, dsq, nc
	LapsCompleted  int    `json:"laps_completed"`
}

// Classification statuses as reported by the remote source.
const (
	ClassFinished      = "finished"
	ClassRetired       = "retired"
	ClassDNS           = "dns"
	ClassDSQ           = "dsq"
	ClassNotClassified = "nc"
)

// RawSession is the unnormalized fetch result for one SessionKey.
type RawSession struct {
	Key            SessionKey
	TotalLaps      int
	Laps           []RawLap
	Classification []Entrant
}

// Lap is a normalized per-driver per-lap record. Position is always resolved
// (forward-filled where the sample was missed); Time stays nil for untimed
// laps so aggregate consumers can exclude them.
type Lap struct {
	DriverID string       `json:"driver_id"`
	Lap      int          `json:"lap"`
	Position int          `json:"position"`
	Time     *float64     `json:"time,omitempty"`
	Sector1  *float64     `json:"sector1,omitempty"`
	Sector2  *float64     `json:"sector2,omitempty"`
	Sector3  *float64     `json:"sector3,omitempty"`
	PitIn    bool         `json:"pit_in,omitempty"`
	PitOut   bool         `json:"pit_out,omitempty"`
	Accurate bool         `json:"accurate"`
	Filled   bool         `json:"filled,omitempty"` // position carried from the previous lap
	Status   DriverStatus `json:"status"`
}

// Session is the normalized record set for one SessionKey. Once written to
// the cache it is never mutated.
type Session struct {
	Key            SessionKey `json:"key"`
	TotalLaps      int        `json:"total_laps"`
	Laps           []Lap      `json:"laps"`
	Classification []Entrant  `json:"classification"`
}

// DriverStatus returns the session-level status tag for the given driver,
// derived from the classification list.
func (s *Session) DriverStatus(driverID string) DriverStatus {
	for _, e := range s.Classification {
		if e.DriverID == driverID {
			return statusFromClassification(e.Status)
		}
	}
	return StatusNotClassified
}

// Entrant looks up the classification row for a driver.
func (s *Session) Entrant(driverID string) (Entrant, bool) {
	for _, e := range s.Classification {
		if e.DriverID == driverID {
			return e, true
		}
	}
	return Entrant{}, false
}

// DriverLaps returns the normalized laps for one driver in lap order.
func (s *Session) DriverLaps(driverID string) []Lap {
	var laps []Lap
	for _, l := range s.Laps {
		if l.DriverID == driverID {
			laps = append(laps, l)
		}
	}
	return laps
}

func statusFromClassification(class string) DriverStatus {
	switch class {
	case ClassFinished:
		return StatusRunning
	case ClassRetired:
		return StatusRetired
	case ClassDNS:
		return StatusDidNotStart
	case ClassDSQ:
		return StatusDisqualified
	default:
		return StatusNotClassified
	}
}
