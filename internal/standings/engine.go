package standings

import (
	"fmt"
	"sort"
)

// RaceResult is the per-driver input the fold consumes for one session. It
// is deliberately minimal: the engine needs classification, position and
// the constructor affiliation at the time of the event, nothing else.
type RaceResult struct {
	DriverID    string
	DriverName  string
	Constructor string
	Position    int  // final classified position, 0 for non-finishers
	Classified  bool // scored positions only; retirements and DSQs are false
}

// DriverStanding is one ranked row of a snapshot.
type DriverStanding struct {
	Rank        int    `json:"rank"`
	DriverID    string `json:"driver_id"`
	DriverName  string `json:"driver_name"`
	Constructor string `json:"constructor"` // most recent affiliation
	Points      int    `json:"points"`
	Wins        int    `json:"wins"`
	Seconds     int    `json:"seconds"`
}

// ConstructorStanding is one ranked row of the constructors' table.
type ConstructorStanding struct {
	Rank        int    `json:"rank"`
	Constructor string `json:"constructor"`
	Points      int    `json:"points"`
	Wins        int    `json:"wins"`
}

// Snapshot is the championship state after one round's fold step. Snapshots
// are write-once: the engine never mutates one after publishing it.
type Snapshot struct {
	Round        int                   `json:"round"`
	Drivers      []DriverStanding      `json:"drivers"`
	Constructors []ConstructorStanding `json:"constructors"`
}

// driverTally is the engine's mutable per-driver accumulator. finishes
// counts classified race finishing positions for the countback tie-break.
type driverTally struct {
	id          string
	name        string
	constructor string
	points      int
	finishes    map[int]int
}

type teamTally struct {
	name   string
	points int
	wins   int
}

// Engine folds per-round results into championship standings in strict
// calendar order and retains every intermediate snapshot so "standings as of
// round N" is a lookup, not a replay.
type Engine struct {
	drivers      map[string]*driverTally
	constructors map[string]*teamTally
	snapshots    []*Snapshot
	nextRound    int
}

// NewEngine returns an engine with all totals at zero, ready for round 1.
func NewEngine() *Engine {
	return &Engine{
		drivers:      make(map[string]*driverTally),
		constructors: make(map[string]*teamTally),
		nextRound:    1,
	}
}

// ApplyRound folds one round's race (and optional sprint) into the running
// totals and publishes the round's snapshot. Rounds must arrive in calendar
// order; a sprint weekend passes both result sets in the same step, a
// conventional weekend passes sprint as nil.
func (e *Engine) ApplyRound(round int, race, sprint []RaceResult) (*Snapshot, error) {
	if round != e.nextRound {
		return nil, fmt.Errorf("round %d applied out of order, expected round %d", round, e.nextRound)
	}
	if err := validateResults(race); err != nil {
		return nil, fmt.Errorf("round %d race results: %w", round, err)
	}
	if err := validateResults(sprint); err != nil {
		return nil, fmt.Errorf("round %d sprint results: %w", round, err)
	}

	for _, r := range sprint {
		e.score(r, SprintPoints(r.Position), false)
	}
	for _, r := range race {
		e.score(r, RacePoints(r.Position), true)
	}

	snap := e.buildSnapshot(round)
	e.snapshots = append(e.snapshots, snap)
	e.nextRound++
	return snap, nil
}

// score credits one result to its driver and to the constructor the driver
// raced for at this event. Constructor affiliation is per-event: a mid-season
// seat swap credits each team only for its own races.
func (e *Engine) score(r RaceResult, points int, isRace bool) {
	d, ok := e.drivers[r.DriverID]
	if !ok {
		d = &driverTally{id: r.DriverID, finishes: make(map[int]int)}
		e.drivers[r.DriverID] = d
	}
	d.name = r.DriverName
	d.constructor = r.Constructor

	team, ok := e.constructors[r.Constructor]
	if !ok {
		team = &teamTally{name: r.Constructor}
		e.constructors[r.Constructor] = team
	}

	if !r.Classified {
		return
	}
	d.points += points
	team.points += points
	if isRace {
		d.finishes[r.Position]++
		if r.Position == 1 {
			team.wins++
		}
	}
}

func (e *Engine) buildSnapshot(round int) *Snapshot {
	tallies := make([]*driverTally, 0, len(e.drivers))
	for _, d := range e.drivers {
		tallies = append(tallies, d)
	}
	sort.Slice(tallies, func(i, j int) bool {
		return lessTally(tallies[i], tallies[j])
	})

	snap := &Snapshot{Round: round}
	for i, d := range tallies {
		snap.Drivers = append(snap.Drivers, DriverStanding{
			Rank:        i + 1,
			DriverID:    d.id,
			DriverName:  d.name,
			Constructor: d.constructor,
			Points:      d.points,
			Wins:        d.finishes[1],
			Seconds:     d.finishes[2],
		})
	}

	teams := make([]*teamTally, 0, len(e.constructors))
	for _, t := range e.constructors {
		teams = append(teams, t)
	}
	sort.Slice(teams, func(i, j int) bool {
		a, b := teams[i], teams[j]
		if a.points != b.points {
			return a.points > b.points
		}
		if a.wins != b.wins {
			return a.wins > b.wins
		}
		return a.name < b.name
	})
	for i, t := range teams {
		snap.Constructors = append(snap.Constructors, ConstructorStanding{
			Rank:        i + 1,
			Constructor: t.name,
			Points:      t.points,
			Wins:        t.wins,
		})
	}
	return snap
}

// lessTally ranks two drivers: points first, then countback through race
// finishing positions (more wins, then more seconds, and so on down the
// order), driver ID as the deterministic last resort.
func lessTally(a, b *driverTally) bool {
	if a.points != b.points {
		return a.points > b.points
	}
	for pos := 1; pos <= countbackDepth; pos++ {
		if a.finishes[pos] != b.finishes[pos] {
			return a.finishes[pos] > b.finishes[pos]
		}
	}
	return a.id < b.id
}

// countbackDepth bounds the positional countback; no grid is larger.
const countbackDepth = 30

// SnapshotAt returns the snapshot after the given round's fold step, or
// false if that round has not been applied yet.
func (e *Engine) SnapshotAt(round int) (*Snapshot, bool) {
	if round < 1 || round > len(e.snapshots) {
		return nil, false
	}
	return e.snapshots[round-1], true
}

// Latest returns the most recent snapshot, or nil before round 1.
func (e *Engine) Latest() *Snapshot {
	if len(e.snapshots) == 0 {
		return nil
	}
	return e.snapshots[len(e.snapshots)-1]
}

// Rounds reports how many rounds have been folded so far.
func (e *Engine) Rounds() int { return len(e.snapshots) }

// validateResults rejects result sets the fold must not absorb: the same
// driver twice, or two drivers holding the same classified position.
func validateResults(results []RaceResult) error {
	seenDriver := make(map[string]bool)
	seenPos := make(map[int]bool)
	for _, r := range results {
		if seenDriver[r.DriverID] {
			return fmt.Errorf("driver %s appears twice", r.DriverID)
		}
		seenDriver[r.DriverID] = true
		if !r.Classified {
			continue
		}
		if r.Position < 1 {
			return fmt.Errorf("driver %s classified without a position", r.DriverID)
		}
		if seenPos[r.Position] {
			return fmt.Errorf("position %d held by two drivers", r.Position)
		}
		seenPos[r.Position] = true
	}
	return nil
}
