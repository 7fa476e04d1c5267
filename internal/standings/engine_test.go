package standings

import (
	"testing"
)

func classified(id, team string, pos int) RaceResult {
	return RaceResult{DriverID: id, DriverName: id, Constructor: team, Position: pos, Classified: true}
}

func dnf(id, team string) RaceResult {
	return RaceResult{DriverID: id, DriverName: id, Constructor: team, Classified: false}
}

func mustApply(t *testing.T, e *Engine, round int, race, sprint []RaceResult) *Snapshot {
	t.Helper()
	snap, err := e.ApplyRound(round, race, sprint)
	if err != nil {
		t.Fatalf("ApplyRound(%d): %v", round, err)
	}
	return snap
}

func standingFor(t *testing.T, snap *Snapshot, driverID string) DriverStanding {
	t.Helper()
	for _, d := range snap.Drivers {
		if d.DriverID == driverID {
			return d
		}
	}
	t.Fatalf("driver %s not in snapshot", driverID)
	return DriverStanding{}
}

func TestPointsTables(t *testing.T) {
	cases := []struct {
		pos          int
		race, sprint int
	}{
		{1, 25, 8},
		{2, 18, 7},
		{8, 4, 1},
		{9, 2, 0},
		{10, 1, 0},
		{11, 0, 0},
		{0, 0, 0},
	}
	for _, tc := range cases {
		if got := RacePoints(tc.pos); got != tc.race {
			t.Errorf("RacePoints(%d) = %d, want %d", tc.pos, got, tc.race)
		}
		if got := SprintPoints(tc.pos); got != tc.sprint {
			t.Errorf("SprintPoints(%d) = %d, want %d", tc.pos, got, tc.sprint)
		}
	}
}

// Two rounds: driver A wins round 1 and takes second in round 2, driver B
// retires from round 1 and wins round 2. A must lead 43 to 25.
func TestTwoRoundFold(t *testing.T) {
	e := NewEngine()

	mustApply(t, e, 1, []RaceResult{
		classified("A", "Alpha", 1),
		dnf("B", "Beta"),
	}, nil)
	snap := mustApply(t, e, 2, []RaceResult{
		classified("B", "Beta", 1),
		classified("A", "Alpha", 2),
	}, nil)

	a := standingFor(t, snap, "A")
	b := standingFor(t, snap, "B")
	if a.Points != 43 || b.Points != 25 {
		t.Errorf("points A=%d B=%d, want 43/25", a.Points, b.Points)
	}
	if a.Rank != 1 || b.Rank != 2 {
		t.Errorf("ranks A=%d B=%d, want 1/2", a.Rank, b.Rank)
	}
}

func TestNonClassifiedScoresZero(t *testing.T) {
	e := NewEngine()
	snap := mustApply(t, e, 1, []RaceResult{
		classified("A", "Alpha", 1),
		{DriverID: "B", DriverName: "B", Constructor: "Beta", Position: 2, Classified: false},
	}, nil)

	if b := standingFor(t, snap, "B"); b.Points != 0 {
		t.Errorf("non-classified driver scored %d points", b.Points)
	}
}

func TestSprintFoldsInSameRound(t *testing.T) {
	e := NewEngine()
	snap := mustApply(t, e, 1,
		[]RaceResult{classified("A", "Alpha", 1)},
		[]RaceResult{classified("A", "Alpha", 2)},
	)
	if a := standingFor(t, snap, "A"); a.Points != 32 {
		t.Errorf("race win + sprint P2 = %d points, want 32", a.Points)
	}
	// Sprint results never count toward the wins tie-break.
	e2 := NewEngine()
	snap2 := mustApply(t, e2, 1,
		[]RaceResult{classified("A", "Alpha", 3)},
		[]RaceResult{classified("A", "Alpha", 1)},
	)
	if a := standingFor(t, snap2, "A"); a.Wins != 0 {
		t.Errorf("sprint win counted as a race win")
	}
}

func TestTieBreakCountback(t *testing.T) {
	e := NewEngine()
	// Mirror-image rounds leave A and B with identical points, wins and
	// seconds, exercising the deterministic fallthrough.
	mustApply(t, e, 1, []RaceResult{
		classified("A", "Alpha", 1),
		classified("B", "Beta", 2),
	}, nil)
	snap := mustApply(t, e, 2, []RaceResult{
		classified("B", "Beta", 1),
		classified("A", "Alpha", 2),
	}, nil)

	// Both have 43 points, one win and one second: countback continues and
	// falls through to the deterministic ID ordering.
	a := standingFor(t, snap, "A")
	b := standingFor(t, snap, "B")
	if a.Points != b.Points {
		t.Fatalf("expected a points tie, got %d vs %d", a.Points, b.Points)
	}
	if a.Rank != 1 || b.Rank != 2 {
		t.Errorf("tied ranks A=%d B=%d, want deterministic 1/2", a.Rank, b.Rank)
	}

	// Give B a third win-less podium and A nothing: B leads on points.
	snap = mustApply(t, e, 3, []RaceResult{
		classified("B", "Beta", 2),
		classified("A", "Alpha", 11),
	}, nil)
	if b := standingFor(t, snap, "B"); b.Rank != 1 {
		t.Errorf("B rank = %d after outscoring A", b.Rank)
	}
}

func TestWinsBreakTies(t *testing.T) {
	e := NewEngine()
	// D takes the race win (25). E takes race P2 plus sprint P2 (18+7=25).
	// Tied on points, D ranks first on the race-wins countback.
	snap := mustApply(t, e, 1,
		[]RaceResult{
			classified("D", "Delta", 1),
			classified("E", "Eps", 2),
		},
		[]RaceResult{
			classified("E", "Eps", 2),
			classified("D", "Delta", 9),
		},
	)

	d := standingFor(t, snap, "D")
	ev := standingFor(t, snap, "E")
	if d.Points != 25 || ev.Points != 25 {
		t.Fatalf("points D=%d E=%d, want a 25-25 tie", d.Points, ev.Points)
	}
	if d.Rank != 1 || ev.Rank != 2 {
		t.Errorf("ranks D=%d E=%d, want the win to break the tie", d.Rank, ev.Rank)
	}
}

func TestOutOfOrderRoundRejected(t *testing.T) {
	e := NewEngine()
	mustApply(t, e, 1, []RaceResult{classified("A", "Alpha", 1)}, nil)
	if _, err := e.ApplyRound(3, []RaceResult{classified("A", "Alpha", 1)}, nil); err == nil {
		t.Fatal("round applied out of order")
	}
	if _, err := e.ApplyRound(1, []RaceResult{classified("A", "Alpha", 1)}, nil); err == nil {
		t.Fatal("round re-applied")
	}
}

func TestMalformedResultsRejected(t *testing.T) {
	e := NewEngine()
	if _, err := e.ApplyRound(1, []RaceResult{
		classified("A", "Alpha", 1),
		classified("B", "Beta", 1),
	}, nil); err == nil {
		t.Fatal("two drivers on one position accepted")
	}
	if _, err := e.ApplyRound(1, []RaceResult{
		classified("A", "Alpha", 1),
		classified("A", "Alpha", 2),
	}, nil); err == nil {
		t.Fatal("duplicate driver accepted")
	}
	// Failed rounds leave no snapshot behind.
	if e.Rounds() != 0 {
		t.Errorf("rejected round produced a snapshot")
	}
}

func TestSnapshotHistory(t *testing.T) {
	e := NewEngine()
	for round := 1; round <= 5; round++ {
		pos := 1
		if round%2 == 0 {
			pos = 2
		}
		mustApply(t, e, round, []RaceResult{
			classified("A", "Alpha", pos),
			classified("B", "Beta", 3-pos),
		}, nil)
	}

	if e.Rounds() != 5 {
		t.Fatalf("rounds = %d, want 5", e.Rounds())
	}

	// Points totals are monotonic non-decreasing across the prefix history.
	prev := 0
	for round := 1; round <= 5; round++ {
		snap, ok := e.SnapshotAt(round)
		if !ok {
			t.Fatalf("no snapshot for round %d", round)
		}
		if snap.Round != round {
			t.Errorf("snapshot round = %d, want %d", snap.Round, round)
		}
		a := standingFor(t, snap, "A")
		if a.Points < prev {
			t.Errorf("round %d: points decreased %d -> %d", round, prev, a.Points)
		}
		prev = a.Points
	}

	if _, ok := e.SnapshotAt(6); ok {
		t.Error("snapshot exists for unapplied round")
	}
	if _, ok := e.SnapshotAt(0); ok {
		t.Error("snapshot exists for round 0")
	}
	if got := e.Latest(); got == nil || got.Round != 5 {
		t.Errorf("Latest() = %+v", got)
	}
}

func TestConstructorAffiliationPerEvent(t *testing.T) {
	e := NewEngine()
	mustApply(t, e, 1, []RaceResult{classified("A", "Alpha", 1)}, nil)
	snap := mustApply(t, e, 2, []RaceResult{classified("A", "Beta", 1)}, nil)

	points := make(map[string]int)
	for _, c := range snap.Constructors {
		points[c.Constructor] = c.Points
	}
	if points["Alpha"] != 25 || points["Beta"] != 25 {
		t.Errorf("constructor points = %v, want 25 each", points)
	}
	// Driver row shows the current seat.
	if a := standingFor(t, snap, "A"); a.Constructor != "Beta" {
		t.Errorf("driver constructor = %s, want Beta", a.Constructor)
	}
}
