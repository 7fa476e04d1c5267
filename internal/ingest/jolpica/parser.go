package jolpica

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fortuna/apex/internal/timing"
)

// parseRawSession assembles a raw session from the laps and results
// responses. Lap timings may be empty (sprints and qualifying carry only a
// classification).
func parseRawSession(key timing.SessionKey, laps *lapsResponse, results []wireResult) (*timing.RawSession, error) {
	raw := &timing.RawSession{Key: key}

	for _, r := range results {
		entrant, err := parseEntrant(r)
		if err != nil {
			return nil, fmt.Errorf("result for %s: %w", r.Driver.DriverID, err)
		}
		raw.Classification = append(raw.Classification, entrant)
		if entrant.LapsCompleted > raw.TotalLaps {
			raw.TotalLaps = entrant.LapsCompleted
		}
	}

	if laps != nil {
		for _, race := range laps.MRData.RaceTable.Races {
			for _, wl := range race.Laps {
				lapNo, err := strconv.Atoi(wl.Number)
				if err != nil {
					return nil, fmt.Errorf("lap number %q: %w", wl.Number, err)
				}
				if lapNo > raw.TotalLaps {
					raw.TotalLaps = lapNo
				}
				for _, tm := range wl.Timings {
					rl := timing.RawLap{DriverID: tm.DriverID, Lap: lapNo, Accurate: true}
					if tm.Position != "" {
						p, err := strconv.Atoi(tm.Position)
						if err != nil {
							return nil, fmt.Errorf("lap %d position %q: %w", lapNo, tm.Position, err)
						}
						rl.Position = &p
					}
					if tm.Time != "" {
						sec, err := parseDuration(tm.Time)
						if err != nil {
							return nil, fmt.Errorf("lap %d time %q: %w", lapNo, tm.Time, err)
						}
						rl.Time = &sec
					} else {
						rl.Accurate = false
					}
					raw.Laps = append(raw.Laps, rl)
				}
			}
		}
	}

	return raw, nil
}

func parseEntrant(r wireResult) (timing.Entrant, error) {
	grid, err := strconv.Atoi(r.Grid)
	if err != nil {
		return timing.Entrant{}, fmt.Errorf("grid %q: %w", r.Grid, err)
	}
	lapsCompleted, err := strconv.Atoi(r.Laps)
	if err != nil {
		return timing.Entrant{}, fmt.Errorf("laps %q: %w", r.Laps, err)
	}

	e := timing.Entrant{
		DriverID:      r.Driver.DriverID,
		DriverName:    strings.TrimSpace(r.Driver.GivenName + " " + r.Driver.FamilyName),
		Constructor:   r.Constructor.Name,
		GridPosition:  grid,
		LapsCompleted: lapsCompleted,
		Status:        classify(r),
	}
	if r.Driver.Code != "" {
		e.DriverID = r.Driver.Code
	}
	if e.Status == timing.ClassFinished {
		pos, err := strconv.Atoi(r.Position)
		if err != nil {
			return timing.Entrant{}, fmt.Errorf("position %q: %w", r.Position, err)
		}
		e.FinishPosition = pos
	}
	return e, nil
}

// classify maps the API's free-form status to the classification statuses
// the normalizer understands. "Finished" and lapped finishers ("+1 Lap")
// both classify; everything else is a non-finish of some flavor.
func classify(r wireResult) string {
	switch r.PositionText {
	case "D":
		return timing.ClassDSQ
	case "W":
		return timing.ClassDNS
	}
	status := strings.TrimSpace(r.Status)
	switch {
	case status == "Finished" || strings.HasPrefix(status, "+"):
		return timing.ClassFinished
	case strings.EqualFold(status, "Did not start"):
		return timing.ClassDNS
	case strings.EqualFold(status, "Disqualified"):
		return timing.ClassDSQ
	case strings.EqualFold(status, "Not classified"):
		return timing.ClassNotClassified
	default:
		return timing.ClassRetired
	}
}

// parseDuration parses "1:32.807", "1:05:23.456" or "32.807" into seconds.
func parseDuration(s string) (float64, error) {
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("malformed duration %q", s)
	}
	var total float64
	for _, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, fmt.Errorf("malformed duration %q: %w", s, err)
		}
		total = total*60 + v
	}
	return total, nil
}
