package timing

import (
	"fmt"
	"sort"
)

// Normalize converts a raw session into the canonical record set. It is a
// pure transformation: no I/O, no shared state.
//
// Rules:
//   - a driver absent from the classification "started" set produces zero lap
//     records and status did-not-start
//   - a missed position sample is forward-filled from the previous lap while
//     the driver is still running; nothing is synthesized past retirement
//   - a null lap time with status running is preserved as null (untimed lap,
//     not a missing sample)
//   - laps are ordered ascending; within a lap, running drivers ascend by
//     position ahead of everyone else
func Normalize(raw *RawSession) (*Session, error) {
	if raw.TotalLaps <= 0 {
		return nil, malformed(raw.Key, "total laps %d", raw.TotalLaps)
	}
	if len(raw.Classification) == 0 {
		return nil, malformed(raw.Key, "empty classification")
	}

	entrants := make(map[string]Entrant, len(raw.Classification))
	finishPositions := make(map[int]string)
	for _, e := range raw.Classification {
		if _, dup := entrants[e.DriverID]; dup {
			return nil, malformed(raw.Key, "driver %s classified twice", e.DriverID)
		}
		entrants[e.DriverID] = e
		if e.Status == ClassFinished {
			if e.FinishPosition <= 0 {
				return nil, malformed(raw.Key, "driver %s finished without a position", e.DriverID)
			}
			if other, taken := finishPositions[e.FinishPosition]; taken {
				return nil, malformed(raw.Key, "finish position %d held by both %s and %s", e.FinishPosition, other, e.DriverID)
			}
			finishPositions[e.FinishPosition] = e.DriverID
		}
	}

	// Group raw laps per driver, rejecting duplicates and unknown drivers.
	byDriver := make(map[string][]RawLap)
	seen := make(map[string]bool)
	for _, l := range raw.Laps {
		if _, ok := entrants[l.DriverID]; !ok {
			return nil, malformed(raw.Key, "lap records for unclassified driver %s", l.DriverID)
		}
		id := fmt.Sprintf("%s#%d", l.DriverID, l.Lap)
		if seen[id] {
			return nil, malformed(raw.Key, "duplicate lap %d for driver %s", l.Lap, l.DriverID)
		}
		seen[id] = true
		if l.Lap < 1 || l.Lap > raw.TotalLaps {
			return nil, malformed(raw.Key, "driver %s lap %d out of range 1..%d", l.DriverID, l.Lap, raw.TotalLaps)
		}
		byDriver[l.DriverID] = append(byDriver[l.DriverID], l)
	}

	var out []Lap
	for _, e := range raw.Classification {
		status := statusFromClassification(e.Status)
		if status == StatusDidNotStart {
			continue
		}
		laps := normalizeDriver(e, status, byDriver[e.DriverID])
		out = append(out, laps...)
	}

	if err := checkPositionUniqueness(raw.Key, out); err != nil {
		return nil, err
	}

	sortLaps(out)

	classification := make([]Entrant, len(raw.Classification))
	copy(classification, raw.Classification)

	return &Session{
		Key:            raw.Key,
		TotalLaps:      raw.TotalLaps,
		Laps:           out,
		Classification: classification,
	}, nil
}

// normalizeDriver resolves one driver's lap sequence: missed samples are
// forward-filled while running, through the classified distance for a driver
// who made the flag; retirement truncates at the last completed lap.
func normalizeDriver(e Entrant, status DriverStatus, raw []RawLap) []Lap {
	if len(raw) == 0 {
		return nil
	}
	sort.Slice(raw, func(i, j int) bool { return raw[i].Lap < raw[j].Lap })

	lastLap := raw[len(raw)-1].Lap
	if status == StatusRunning {
		// A trailing telemetry gap for a driver still running is a missed
		// sample, not an early stop; fill through the completed distance.
		if e.LapsCompleted > lastLap {
			lastLap = e.LapsCompleted
		}
	} else if e.LapsCompleted > 0 && e.LapsCompleted < lastLap {
		lastLap = e.LapsCompleted
	}

	byLap := make(map[int]RawLap, len(raw))
	for _, l := range raw {
		byLap[l.Lap] = l
	}

	// Seed the carry with the grid slot so a missed first-lap sample still
	// resolves to something defensible.
	carry := e.GridPosition

	var out []Lap
	for n := 1; n <= lastLap; n++ {
		rl, sampled := byLap[n]
		lap := Lap{
			DriverID: e.DriverID,
			Lap:      n,
			Status:   StatusRunning,
		}
		switch {
		case sampled && rl.Position != nil:
			lap.Position = *rl.Position
			carry = *rl.Position
		case carry > 0:
			lap.Position = carry
			lap.Filled = true
		default:
			// No reported position and no grid slot to carry; the sample
			// cannot be placed on the order and is dropped.
			continue
		}
		if sampled {
			lap.Time = rl.Time
			lap.Sector1 = rl.Sector1
			lap.Sector2 = rl.Sector2
			lap.Sector3 = rl.Sector3
			lap.PitIn = rl.PitIn
			lap.PitOut = rl.PitOut
			lap.Accurate = rl.Accurate
		}
		out = append(out, lap)
	}

	// Tag the terminal lap of a non-running driver so downstream consumers
	// see the transition without consulting the classification.
	if status != StatusRunning && len(out) > 0 {
		out[len(out)-1].Status = status
	}
	return out
}

// checkPositionUniqueness rejects two drivers reported on the same position
// of the same lap. Forward-filled samples are exempt: a carried position can
// legitimately collide with a reported one.
func checkPositionUniqueness(key SessionKey, laps []Lap) error {
	type slot struct{ lap, pos int }
	held := make(map[slot]string)
	for _, l := range laps {
		if l.Filled || l.Status != StatusRunning {
			continue
		}
		s := slot{l.Lap, l.Position}
		if other, ok := held[s]; ok {
			return malformed(key, "lap %d position %d held by both %s and %s", l.Lap, l.Position, other, l.DriverID)
		}
		held[s] = l.DriverID
	}
	return nil
}

func sortLaps(laps []Lap) {
	sort.SliceStable(laps, func(i, j int) bool {
		a, b := laps[i], laps[j]
		if a.Lap != b.Lap {
			return a.Lap < b.Lap
		}
		ar, br := a.Status == StatusRunning, b.Status == StatusRunning
		if ar != br {
			return ar
		}
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		return a.DriverID < b.DriverID
	})
}
