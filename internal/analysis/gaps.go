package analysis

import (
	"sort"

	"github.com/fortuna/apex/internal/timing"
)

// GapSample is one point of a driver's gap-to-leader trace, in seconds.
type GapSample struct {
	Lap int     `json:"lap"`
	Gap float64 `json:"gap"`
}

// Gaps maps driver ID to their ordered gap-to-leader trace.
type Gaps map[string][]GapSample

// BuildGaps derives gap-to-leader series from lap cumulative times. The
// leader's own gap is pinned to 0.0 rather than computed by subtraction, so
// it never shows floating-point near-zero noise. A sample is omitted, not
// zeroed, whenever either cumulative chain is broken by an untimed lap.
func BuildGaps(s *timing.Session) Gaps {
	// Cumulative race time per driver. A nil lap time poisons the chain:
	// every later cumulative value for that driver is unknowable.
	type chain struct {
		total  float64
		broken bool
	}
	chains := make(map[string]*chain)
	cumAt := func(driverID string) *chain {
		c, ok := chains[driverID]
		if !ok {
			c = &chain{}
			chains[driverID] = c
		}
		return c
	}

	byLap := make(map[int][]timing.Lap)
	for _, l := range s.Laps {
		byLap[l.Lap] = append(byLap[l.Lap], l)
	}
	laps := make([]int, 0, len(byLap))
	for n := range byLap {
		laps = append(laps, n)
	}
	sort.Ints(laps)

	gaps := make(Gaps)
	for _, n := range laps {
		var leader *chain
		var leaderID string
		leaderFilled := false

		for _, l := range byLap[n] {
			c := cumAt(l.DriverID)
			if l.Time == nil {
				c.broken = true
			} else if !c.broken {
				c.total += *l.Time
			}
			// A carried P1 can coexist with the reported one; the reported
			// sample names the actual leader.
			if l.Status == timing.StatusRunning && l.Position == 1 {
				if leader == nil || (leaderFilled && !l.Filled) {
					leader = c
					leaderID = l.DriverID
					leaderFilled = l.Filled
				}
			}
		}
		if leader == nil {
			continue
		}

		for _, l := range byLap[n] {
			if l.Status != timing.StatusRunning {
				continue
			}
			if l.DriverID == leaderID {
				gaps[l.DriverID] = append(gaps[l.DriverID], GapSample{Lap: n, Gap: 0.0})
				continue
			}
			c := chains[l.DriverID]
			if c.broken || leader.broken {
				continue
			}
			gaps[l.DriverID] = append(gaps[l.DriverID], GapSample{Lap: n, Gap: c.total - leader.total})
		}
	}
	return gaps
}
