package timing

import (
	"errors"
	"testing"
)

func fsec(v float64) *float64 { return &v }
func pos(v int) *int          { return &v }

func testKey() SessionKey {
	return SessionKey{Season: 2024, Round: 21, Type: SessionRace}
}

func classified(id string, finish, grid, laps int) Entrant {
	return Entrant{
		DriverID:       id,
		DriverName:     id,
		Constructor:    "Test",
		GridPosition:   grid,
		FinishPosition: finish,
		Status:         ClassFinished,
		LapsCompleted:  laps,
	}
}

func TestNormalizeDidNotStart(t *testing.T) {
	raw := &RawSession{
		Key:       testKey(),
		TotalLaps: 3,
		Laps: []RawLap{
			{DriverID: "VER", Lap: 1, Time: fsec(92.1), Position: pos(1), Accurate: true},
			{DriverID: "VER", Lap: 2, Time: fsec(91.8), Position: pos(1), Accurate: true},
			{DriverID: "VER", Lap: 3, Time: fsec(91.9), Position: pos(1), Accurate: true},
		},
		Classification: []Entrant{
			classified("VER", 1, 1, 3),
			{DriverID: "ALB", DriverName: "ALB", Constructor: "Test", GridPosition: 12, Status: ClassDNS},
		},
	}

	s, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got := s.DriverLaps("ALB"); len(got) != 0 {
		t.Errorf("DNS driver produced %d laps, want 0", len(got))
	}
	if got := s.DriverStatus("ALB"); got != StatusDidNotStart {
		t.Errorf("DNS driver status = %s, want %s", got, StatusDidNotStart)
	}
}

func TestNormalizeForwardFillsMissedSample(t *testing.T) {
	raw := &RawSession{
		Key:       testKey(),
		TotalLaps: 3,
		Laps: []RawLap{
			{DriverID: "NOR", Lap: 1, Time: fsec(93.0), Position: pos(4), Accurate: true},
			{DriverID: "NOR", Lap: 2, Time: fsec(92.7), Position: nil, Accurate: true}, // missed sample
			{DriverID: "NOR", Lap: 3, Time: fsec(92.5), Position: pos(3), Accurate: true},
		},
		Classification: []Entrant{classified("NOR", 3, 4, 3)},
	}

	s, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	laps := s.DriverLaps("NOR")
	if len(laps) != 3 {
		t.Fatalf("got %d laps, want 3", len(laps))
	}
	if laps[1].Position != 4 || !laps[1].Filled {
		t.Errorf("lap 2 = pos %d filled=%v, want carried pos 4 filled=true", laps[1].Position, laps[1].Filled)
	}
	if laps[2].Position != 3 || laps[2].Filled {
		t.Errorf("lap 3 = pos %d filled=%v, want reported pos 3", laps[2].Position, laps[2].Filled)
	}
}

func TestNormalizeSynthesizesGapWhileRunning(t *testing.T) {
	raw := &RawSession{
		Key:       testKey(),
		TotalLaps: 4,
		Laps: []RawLap{
			{DriverID: "HAM", Lap: 1, Time: fsec(94.0), Position: pos(6), Accurate: true},
			// lap 2 missing entirely
			{DriverID: "HAM", Lap: 3, Time: fsec(93.6), Position: pos(5), Accurate: true},
			{DriverID: "HAM", Lap: 4, Time: fsec(93.4), Position: pos(5), Accurate: true},
		},
		Classification: []Entrant{classified("HAM", 5, 7, 4)},
	}

	s, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	laps := s.DriverLaps("HAM")
	if len(laps) != 4 {
		t.Fatalf("got %d laps, want 4 (gap filled)", len(laps))
	}
	gap := laps[1]
	if gap.Lap != 2 || gap.Position != 6 || !gap.Filled {
		t.Errorf("gap lap = %+v, want lap 2 at carried pos 6", gap)
	}
	if gap.Time != nil {
		t.Errorf("synthesized lap has time %v, want nil", *gap.Time)
	}
}

func TestNormalizeFillsTrailingGapWhileRunning(t *testing.T) {
	// The feed drops out before the flag but the classification credits the
	// full distance; the carry must run through it, not stop at the last
	// sample like a retirement would.
	raw := &RawSession{
		Key:       testKey(),
		TotalLaps: 3,
		Laps: []RawLap{
			{DriverID: "VER", Lap: 1, Time: fsec(92.1), Position: pos(1), Accurate: true},
			{DriverID: "VER", Lap: 2, Time: fsec(91.8), Position: pos(1), Accurate: true},
		},
		Classification: []Entrant{classified("VER", 1, 1, 3)},
	}

	s, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	laps := s.DriverLaps("VER")
	if len(laps) != 3 {
		t.Fatalf("got %d laps, want 3 (trailing gap filled)", len(laps))
	}
	last := laps[2]
	if last.Position != 1 || !last.Filled {
		t.Errorf("lap 3 = pos %d filled=%v, want carried pos 1 filled=true", last.Position, last.Filled)
	}
	if last.Time != nil {
		t.Errorf("filled lap has time %v, want nil", *last.Time)
	}
	if last.Status != StatusRunning {
		t.Errorf("filled lap status = %s, want %s", last.Status, StatusRunning)
	}
}

func TestNormalizeRetirementTruncates(t *testing.T) {
	raw := &RawSession{
		Key:       testKey(),
		TotalLaps: 50,
		Laps: []RawLap{
			{DriverID: "PER", Lap: 1, Time: fsec(95.0), Position: pos(8), Accurate: true},
			{DriverID: "PER", Lap: 2, Time: fsec(94.8), Position: pos(8), Accurate: true},
			{DriverID: "PER", Lap: 3, Time: nil, Position: pos(12)}, // crawling back to the pits
		},
		Classification: []Entrant{
			{DriverID: "PER", DriverName: "PER", Constructor: "Test", GridPosition: 8, Status: ClassRetired, LapsCompleted: 3},
		},
	}

	s, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	laps := s.DriverLaps("PER")
	if len(laps) != 3 {
		t.Fatalf("retired driver has %d laps, want exactly 3", len(laps))
	}
	if laps[2].Status != StatusRetired {
		t.Errorf("terminal lap status = %s, want %s", laps[2].Status, StatusRetired)
	}
	for _, l := range laps[:2] {
		if l.Status != StatusRunning {
			t.Errorf("lap %d status = %s, want %s", l.Lap, l.Status, StatusRunning)
		}
	}
}

func TestNormalizeRetirementHonorsLapsCompleted(t *testing.T) {
	// Telemetry sometimes reports one lap more than the driver is credited
	// with; the classification wins.
	raw := &RawSession{
		Key:       testKey(),
		TotalLaps: 50,
		Laps: []RawLap{
			{DriverID: "SAI", Lap: 1, Time: fsec(93.0), Position: pos(3), Accurate: true},
			{DriverID: "SAI", Lap: 2, Time: fsec(92.8), Position: pos(3), Accurate: true},
			{DriverID: "SAI", Lap: 3, Time: nil, Position: nil},
		},
		Classification: []Entrant{
			{DriverID: "SAI", DriverName: "SAI", Constructor: "Test", GridPosition: 3, Status: ClassRetired, LapsCompleted: 2},
		},
	}

	s, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if laps := s.DriverLaps("SAI"); len(laps) != 2 {
		t.Errorf("got %d laps, want 2", len(laps))
	}
}

func TestNormalizePreservesNullLapTime(t *testing.T) {
	raw := &RawSession{
		Key:       testKey(),
		TotalLaps: 2,
		Laps: []RawLap{
			{DriverID: "LEC", Lap: 1, Time: fsec(92.0), Position: pos(2), Accurate: true},
			{DriverID: "LEC", Lap: 2, Time: nil, Position: pos(2)}, // untimed, not missing
		},
		Classification: []Entrant{classified("LEC", 2, 2, 2)},
	}

	s, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	laps := s.DriverLaps("LEC")
	if laps[1].Time != nil {
		t.Errorf("untimed lap time = %v, want nil", *laps[1].Time)
	}
	if laps[1].Status != StatusRunning {
		t.Errorf("untimed lap status = %s, want %s", laps[1].Status, StatusRunning)
	}
	if laps[1].Filled {
		t.Error("untimed lap marked filled; the position was reported")
	}
}

func TestNormalizeOrdering(t *testing.T) {
	raw := &RawSession{
		Key:       testKey(),
		TotalLaps: 1,
		Laps: []RawLap{
			{DriverID: "RUS", Lap: 1, Time: fsec(93.0), Position: pos(2), Accurate: true},
			{DriverID: "VER", Lap: 1, Time: fsec(92.0), Position: pos(1), Accurate: true},
			{DriverID: "OCO", Lap: 1, Time: nil, Position: pos(15)},
		},
		Classification: []Entrant{
			classified("VER", 1, 1, 1),
			classified("RUS", 2, 3, 1),
			{DriverID: "OCO", DriverName: "OCO", Constructor: "Test", GridPosition: 15, Status: ClassRetired, LapsCompleted: 1},
		},
	}

	s, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	want := []string{"VER", "RUS", "OCO"}
	for i, id := range want {
		if s.Laps[i].DriverID != id {
			t.Fatalf("lap order[%d] = %s, want %s", i, s.Laps[i].DriverID, id)
		}
	}
}

func TestNormalizeMalformed(t *testing.T) {
	cases := []struct {
		name string
		raw  *RawSession
	}{
		{
			name: "duplicate lap number",
			raw: &RawSession{
				Key:       testKey(),
				TotalLaps: 2,
				Laps: []RawLap{
					{DriverID: "VER", Lap: 1, Time: fsec(92.0), Position: pos(1), Accurate: true},
					{DriverID: "VER", Lap: 1, Time: fsec(92.1), Position: pos(1), Accurate: true},
				},
				Classification: []Entrant{classified("VER", 1, 1, 2)},
			},
		},
		{
			name: "laps for unclassified driver",
			raw: &RawSession{
				Key:       testKey(),
				TotalLaps: 2,
				Laps: []RawLap{
					{DriverID: "???", Lap: 1, Time: fsec(92.0), Position: pos(1), Accurate: true},
				},
				Classification: []Entrant{classified("VER", 1, 1, 2)},
			},
		},
		{
			name: "two drivers on one position",
			raw: &RawSession{
				Key:       testKey(),
				TotalLaps: 1,
				Laps: []RawLap{
					{DriverID: "VER", Lap: 1, Time: fsec(92.0), Position: pos(1), Accurate: true},
					{DriverID: "NOR", Lap: 1, Time: fsec(92.2), Position: pos(1), Accurate: true},
				},
				Classification: []Entrant{
					classified("VER", 1, 1, 1),
					classified("NOR", 2, 2, 1),
				},
			},
		},
		{
			name: "empty classification",
			raw:  &RawSession{Key: testKey(), TotalLaps: 1},
		},
		{
			name: "duplicate finish position",
			raw: &RawSession{
				Key:       testKey(),
				TotalLaps: 1,
				Classification: []Entrant{
					classified("VER", 1, 1, 1),
					classified("NOR", 1, 2, 1),
				},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Normalize(tc.raw)
			var me *MalformedSessionError
			if !errors.As(err, &me) {
				t.Fatalf("err = %v, want MalformedSessionError", err)
			}
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	raw := &RawSession{
		Key:       testKey(),
		TotalLaps: 2,
		Laps: []RawLap{
			{DriverID: "VER", Lap: 1, Time: fsec(92.0), Position: pos(1), Accurate: true},
			{DriverID: "VER", Lap: 2, Time: fsec(91.7), Position: pos(1), Accurate: true},
		},
		Classification: []Entrant{classified("VER", 1, 1, 2)},
	}
	s, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	blob, err := Encode(s)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	again, err := Encode(s)
	if err != nil {
		t.Fatalf("Encode second pass: %v", err)
	}
	if string(blob) != string(again) {
		t.Error("encoding is not deterministic")
	}

	got, err := Decode(blob)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Key != s.Key || len(got.Laps) != len(s.Laps) {
		t.Errorf("round trip mismatch: %+v", got.Key)
	}
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	if _, err := Decode([]byte(`{"version":99,"session":{}}`)); err == nil {
		t.Fatal("expected version mismatch error")
	}
}
