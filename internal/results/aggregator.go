// Package results builds the classified results table for one session:
// per-entrant grid, finish, points, best-lap and gap-to-winner columns in
// presentation order.
package results

import (
	"fmt"
	"sort"

	"github.com/fortuna/apex/internal/standings"
	"github.com/fortuna/apex/internal/timing"
)

// Row is one entrant's line in the results table.
type Row struct {
	DriverID       string   `json:"driver_id"`
	DriverName     string   `json:"driver_name"`
	Constructor    string   `json:"constructor"`
	GridPosition   int      `json:"grid_position"`
	FinishPosition int      `json:"finish_position,omitempty"` // 0 for non-finishers
	Status         string   `json:"status"`
	PositionChange int      `json:"position_change"` // grid minus finish, finishers only
	LapsCompleted  int      `json:"laps_completed"`
	Points         int      `json:"points"`
	BestLap        *float64 `json:"best_lap,omitempty"`
	BestSector1    *float64 `json:"best_sector1,omitempty"`
	BestSector2    *float64 `json:"best_sector2,omitempty"`
	BestSector3    *float64 `json:"best_sector3,omitempty"`
	AvgSpeedKph    float64  `json:"avg_speed_kph,omitempty"`
	Gap            string   `json:"gap"` // "+5.125", "+1 Lap", "DNF", ...
}

// Table is the ordered results table for one session.
type Table struct {
	Key  timing.SessionKey `json:"key"`
	Rows []Row             `json:"rows"`
}

// Build aggregates a normalized session into the results table. circuitKm
// feeds the average-speed column and may be zero when the lap length is
// unknown, which simply leaves the column empty.
func Build(s *timing.Session, circuitKm float64) *Table {
	table := &Table{Key: s.Key}

	winner := findWinner(s)

	for _, e := range s.Classification {
		row := Row{
			DriverID:       e.DriverID,
			DriverName:     e.DriverName,
			Constructor:    e.Constructor,
			GridPosition:   e.GridPosition,
			FinishPosition: e.FinishPosition,
			Status:         e.Status,
			LapsCompleted:  e.LapsCompleted,
			Points:         award(s.Key.Type, e),
		}
		if e.Status == timing.ClassFinished && e.GridPosition > 0 {
			row.PositionChange = e.GridPosition - e.FinishPosition
		}

		total, complete := fillLapColumns(&row, s.DriverLaps(e.DriverID))
		if circuitKm > 0 && complete && total > 0 {
			row.AvgSpeedKph = circuitKm * float64(row.LapsCompleted) / total * 3600
		}
		row.Gap = gapToWinner(e, winner, total, complete)

		table.Rows = append(table.Rows, row)
	}

	sort.SliceStable(table.Rows, func(i, j int) bool {
		return lessRow(table.Rows[i], table.Rows[j])
	})
	return table
}

// winnerTime is the reference for the gap column.
type winnerTime struct {
	entrant  timing.Entrant
	total    float64
	complete bool
	found    bool
}

func findWinner(s *timing.Session) winnerTime {
	for _, e := range s.Classification {
		if e.Status == timing.ClassFinished && e.FinishPosition == 1 {
			w := winnerTime{entrant: e, found: true}
			w.total, w.complete = raceTime(s.DriverLaps(e.DriverID))
			return w
		}
	}
	return winnerTime{}
}

// fillLapColumns computes the best-lap and best-sector columns and returns
// the driver's total race time with a flag for whether every lap was timed.
func fillLapColumns(row *Row, laps []timing.Lap) (float64, bool) {
	// A session with no lap records (classification-only sources) has no
	// trustworthy totals.
	var total float64
	complete := len(laps) > 0
	for _, l := range laps {
		if l.Time == nil {
			complete = false
		} else {
			total += *l.Time
			row.BestLap = minTime(row.BestLap, l.Time)
		}
		row.BestSector1 = minTime(row.BestSector1, l.Sector1)
		row.BestSector2 = minTime(row.BestSector2, l.Sector2)
		row.BestSector3 = minTime(row.BestSector3, l.Sector3)
	}
	return total, complete
}

func minTime(best, candidate *float64) *float64 {
	if candidate == nil {
		return best
	}
	if best == nil || *candidate < *best {
		v := *candidate
		return &v
	}
	return best
}

// raceTime sums a driver's lap times; the bool reports whether the sum is
// trustworthy (no untimed laps in the chain).
func raceTime(laps []timing.Lap) (float64, bool) {
	if len(laps) == 0 {
		return 0, false
	}
	var total float64
	for _, l := range laps {
		if l.Time == nil {
			return 0, false
		}
		total += *l.Time
	}
	return total, true
}

// gapToWinner formats the gap column. Finishers on the lead lap show a time
// delta, lapped finishers show the lap count, non-finishers show their
// status tag.
func gapToWinner(e timing.Entrant, w winnerTime, total float64, complete bool) string {
	if e.Status != timing.ClassFinished {
		return statusTag(e.Status)
	}
	if !w.found || e.DriverID == w.entrant.DriverID {
		return ""
	}
	if down := w.entrant.LapsCompleted - e.LapsCompleted; down > 0 {
		if down == 1 {
			return "+1 Lap"
		}
		return fmt.Sprintf("+%d Laps", down)
	}
	if !complete || !w.complete {
		return ""
	}
	return formatDelta(total - w.total)
}

func formatDelta(seconds float64) string {
	if seconds < 60 {
		return fmt.Sprintf("+%.3f", seconds)
	}
	mins := int(seconds) / 60
	return fmt.Sprintf("+%d:%06.3f", mins, seconds-float64(mins*60))
}

func statusTag(class string) string {
	switch class {
	case timing.ClassRetired:
		return "DNF"
	case timing.ClassNotClassified:
		return "NC"
	case timing.ClassDSQ:
		return "DSQ"
	case timing.ClassDNS:
		return "DNS"
	}
	return ""
}

// award looks up the points for one classification row. Only race and
// sprint sessions pay points, and only to classified finishers.
func award(sessionType timing.SessionType, e timing.Entrant) int {
	if e.Status != timing.ClassFinished {
		return 0
	}
	switch sessionType {
	case timing.SessionRace:
		return standings.RacePoints(e.FinishPosition)
	case timing.SessionSprint:
		return standings.SprintPoints(e.FinishPosition)
	}
	return 0
}

// lessRow orders the table: finishers by position, then non-finishers by
// laps completed descending, then by status severity.
func lessRow(a, b Row) bool {
	aFin := a.Status == timing.ClassFinished
	bFin := b.Status == timing.ClassFinished
	if aFin != bFin {
		return aFin
	}
	if aFin {
		return a.FinishPosition < b.FinishPosition
	}
	if a.LapsCompleted != b.LapsCompleted {
		return a.LapsCompleted > b.LapsCompleted
	}
	if sa, sb := severity(a.Status), severity(b.Status); sa != sb {
		return sa < sb
	}
	return a.DriverID < b.DriverID
}

func severity(class string) int {
	switch class {
	case timing.ClassRetired:
		return 0
	case timing.ClassNotClassified:
		return 1
	case timing.ClassDSQ:
		return 2
	case timing.ClassDNS:
		return 3
	}
	return 4
}

// StandingsInput converts the table into the fold's per-driver input rows.
func (t *Table) StandingsInput() []standings.RaceResult {
	out := make([]standings.RaceResult, 0, len(t.Rows))
	for _, r := range t.Rows {
		out = append(out, standings.RaceResult{
			DriverID:    r.DriverID,
			DriverName:  r.DriverName,
			Constructor: r.Constructor,
			Position:    r.FinishPosition,
			Classified:  r.Status == timing.ClassFinished,
		})
	}
	return out
}
