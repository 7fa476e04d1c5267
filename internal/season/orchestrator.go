// Package season drives the championship fold: it walks the calendar in
// order, loads each round's sessions through the cache-backed loader, builds
// results tables and folds them into the standings engine, then fans the
// outputs out to persistence, streams and connected clients.
package season

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/fortuna/apex/internal/analysis"
	"github.com/fortuna/apex/internal/calendar"
	"github.com/fortuna/apex/internal/ingest"
	"github.com/fortuna/apex/internal/results"
	"github.com/fortuna/apex/internal/standings"
	"github.com/fortuna/apex/internal/timing"
)

// ResultsStore persists a session's results table.
type ResultsStore interface {
	UpsertTable(ctx context.Context, table *results.Table) error
}

// SnapshotStore persists one round's standings snapshot.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, season int, snap *standings.Snapshot) error
}

// Publisher pushes fold events to a stream.
type Publisher interface {
	PublishStandings(ctx context.Context, season int, snap *standings.Snapshot) error
	PublishResults(ctx context.Context, table interface{}) error
}

// Broadcaster pushes a payload to connected clients.
type Broadcaster interface {
	Broadcast(data []byte)
}

// Sinks are the optional fan-out targets for fold outputs; any of them may
// be nil, failures there are logged and never abort the fold.
type Sinks struct {
	Results   ResultsStore
	Snapshots SnapshotStore
	Publisher Publisher
	Broadcast Broadcaster
}

// Orchestrator owns the season state: the engine fold plus the per-round
// results tables it has produced so far.
type Orchestrator struct {
	calendar *calendar.Calendar
	loader   *ingest.Loader
	sinks    Sinks

	mu     sync.RWMutex
	engine *standings.Engine
	tables map[timing.SessionKey]*results.Table
}

// NewOrchestrator creates an orchestrator at round zero.
func NewOrchestrator(cal *calendar.Calendar, loader *ingest.Loader, sinks Sinks) *Orchestrator {
	return &Orchestrator{
		calendar: cal,
		loader:   loader,
		sinks:    sinks,
		engine:   standings.NewEngine(),
		tables:   make(map[timing.SessionKey]*results.Table),
	}
}

// ProcessRound folds one round: load its sessions, build the results
// tables, apply the points award and fan out the snapshot. Rounds must be
// processed in calendar order; the engine rejects anything else.
func (o *Orchestrator) ProcessRound(ctx context.Context, round int) (*standings.Snapshot, error) {
	event, err := o.calendar.Event(round)
	if err != nil {
		return nil, err
	}

	raceTable, err := o.buildTable(ctx, o.calendar.RaceKey(round), event.CircuitKm)
	if err != nil {
		return nil, err
	}

	var sprintInput []standings.RaceResult
	var sprintTable *results.Table
	if sprintKey, ok := o.calendar.SprintKey(round); ok {
		sprintTable, err = o.buildTable(ctx, sprintKey, event.CircuitKm)
		if err != nil {
			return nil, err
		}
		sprintInput = sprintTable.StandingsInput()
	}

	o.mu.Lock()
	snap, err := o.engine.ApplyRound(round, raceTable.StandingsInput(), sprintInput)
	if err == nil {
		o.tables[raceTable.Key] = raceTable
		if sprintTable != nil {
			o.tables[sprintTable.Key] = sprintTable
		}
	}
	o.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("folding round %d: %w", round, err)
	}

	o.fanOut(ctx, snap, raceTable, sprintTable)

	log.Printf("✓ Round %d (%s) folded: %d drivers in standings", round, event.Name, len(snap.Drivers))
	return snap, nil
}

// ProcessRounds folds a contiguous range in order, stopping at the first
// failure: a malformed session must halt the fold, not be skipped over.
func (o *Orchestrator) ProcessRounds(ctx context.Context, from, to int) error {
	for round := from; round <= to; round++ {
		if _, err := o.ProcessRound(ctx, round); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) buildTable(ctx context.Context, key timing.SessionKey, circuitKm float64) (*results.Table, error) {
	session, err := o.loader.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	return results.Build(session, circuitKm), nil
}

// fanOut delivers fold outputs to the configured sinks. Sink failures are
// logged and swallowed: persistence and push are observers of the fold, not
// participants in it.
func (o *Orchestrator) fanOut(ctx context.Context, snap *standings.Snapshot, tables ...*results.Table) {
	for _, table := range tables {
		if table == nil {
			continue
		}
		if o.sinks.Results != nil {
			if err := o.sinks.Results.UpsertTable(ctx, table); err != nil {
				log.Printf("⚠ Failed to persist results for %s: %v", table.Key, err)
			}
		}
		if o.sinks.Publisher != nil {
			if err := o.sinks.Publisher.PublishResults(ctx, table); err != nil {
				log.Printf("⚠ Failed to publish results for %s: %v", table.Key, err)
			}
		}
	}

	if o.sinks.Snapshots != nil {
		if err := o.sinks.Snapshots.SaveSnapshot(ctx, o.calendar.Season, snap); err != nil {
			log.Printf("⚠ Failed to persist snapshot for round %d: %v", snap.Round, err)
		}
	}
	if o.sinks.Publisher != nil {
		if err := o.sinks.Publisher.PublishStandings(ctx, o.calendar.Season, snap); err != nil {
			log.Printf("⚠ Failed to publish standings for round %d: %v", snap.Round, err)
		}
	}
	if o.sinks.Broadcast != nil {
		if payload, err := encodeStandingsEvent(o.calendar.Season, snap); err == nil {
			o.sinks.Broadcast.Broadcast(payload)
		}
	}
}

// Calendar returns the season calendar.
func (o *Orchestrator) Calendar() *calendar.Calendar { return o.calendar }

// Rounds reports how many rounds have been folded.
func (o *Orchestrator) Rounds() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.engine.Rounds()
}

// SnapshotAt returns the standings after the given round's fold step.
func (o *Orchestrator) SnapshotAt(round int) (*standings.Snapshot, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.engine.SnapshotAt(round)
}

// Latest returns the most recent snapshot, nil before round 1.
func (o *Orchestrator) Latest() *standings.Snapshot {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.engine.Latest()
}

// Table returns the built results table for a folded session.
func (o *Orchestrator) Table(key timing.SessionKey) (*results.Table, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	t, ok := o.tables[key]
	return t, ok
}

// Progression loads a round's race session and derives position traces for
// the selected drivers. Works for any round with cached or fetchable data,
// folded or not.
func (o *Orchestrator) Progression(ctx context.Context, round int, drivers []string) (analysis.Progression, error) {
	session, err := o.loader.Load(ctx, o.calendar.RaceKey(round))
	if err != nil {
		return nil, err
	}
	return analysis.BuildProgression(session, drivers), nil
}

// Gaps loads a round's race session and derives gap-to-leader traces.
func (o *Orchestrator) Gaps(ctx context.Context, round int) (analysis.Gaps, error) {
	session, err := o.loader.Load(ctx, o.calendar.RaceKey(round))
	if err != nil {
		return nil, err
	}
	return analysis.BuildGaps(session), nil
}
