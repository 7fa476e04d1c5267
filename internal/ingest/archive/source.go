package archive

import (
	"context"
	"fmt"

	"github.com/fortuna/apex/internal/timing"
)

// Source adapts the archive scraper to the ingest source interface. It is
// the fallback behind the primary API: slower and classification-only, but
// independent of the API's availability.
type Source struct {
	client *Client
}

// NewSource creates an archive-backed source. Close must be called when the
// source is no longer needed to release the browser allocator.
func NewSource(baseURL string) (*Source, error) {
	client, err := NewClient(baseURL)
	if err != nil {
		return nil, fmt.Errorf("creating archive client: %w", err)
	}
	return &Source{client: client}, nil
}

func (s *Source) Name() string { return "archive" }

// Close releases the headless browser resources.
func (s *Source) Close() { s.client.Close() }

// Fetch scrapes the classification page for the keyed session.
func (s *Source) Fetch(ctx context.Context, key timing.SessionKey) (*timing.RawSession, error) {
	html, err := s.client.FetchSessionPage(ctx, key.Season, key.Round, string(key.Type))
	if err != nil {
		return nil, fmt.Errorf("fetching %s page: %w", key, err)
	}

	doc, err := ParseHTML(html)
	if err != nil {
		return nil, err
	}

	return parseClassification(doc, key)
}
