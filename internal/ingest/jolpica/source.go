package jolpica

import (
	"context"
	"fmt"
	"log"

	"github.com/fortuna/apex/internal/timing"
)

// Source adapts the jolpica client to the loader's Source contract.
type Source struct {
	client *Client
}

// NewSource creates a Source against the public API; baseURL overrides it
// when non-empty.
func NewSource(baseURL string) *Source {
	return &Source{client: New(baseURL)}
}

// Name identifies the source in logs.
func (s *Source) Name() string { return "jolpica" }

// Fetch retrieves the raw records for one session. Races fetch both the lap
// timings and the classification; sprint and qualifying sessions carry only
// a classification.
func (s *Source) Fetch(ctx context.Context, key timing.SessionKey) (*timing.RawSession, error) {
	switch key.Type {
	case timing.SessionRace:
		return s.fetchRace(ctx, key)
	case timing.SessionSprint:
		resp, err := s.client.FetchSprintResults(ctx, key.Season, key.Round)
		if err != nil {
			return nil, err
		}
		return parseRawSession(key, nil, sprintResults(resp))
	case timing.SessionQualifying:
		resp, err := s.client.FetchQualifyingResults(ctx, key.Season, key.Round)
		if err != nil {
			return nil, err
		}
		return parseRawSession(key, nil, raceResults(resp))
	default:
		return nil, fmt.Errorf("session type %q not served by jolpica", key.Type)
	}
}

func (s *Source) fetchRace(ctx context.Context, key timing.SessionKey) (*timing.RawSession, error) {
	results, err := s.client.FetchResults(ctx, key.Season, key.Round)
	if err != nil {
		return nil, err
	}
	laps, err := s.client.FetchLaps(ctx, key.Season, key.Round)
	if err != nil {
		return nil, err
	}
	log.Printf("[jolpica] fetched %s", key)
	return parseRawSession(key, laps, raceResults(results))
}

func raceResults(resp *resultsResponse) []wireResult {
	for _, race := range resp.MRData.RaceTable.Races {
		if len(race.Results) > 0 {
			return race.Results
		}
	}
	return nil
}

func sprintResults(resp *resultsResponse) []wireResult {
	for _, race := range resp.MRData.RaceTable.Races {
		if len(race.SprintResults) > 0 {
			return race.SprintResults
		}
	}
	return nil
}
