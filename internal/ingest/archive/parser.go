package archive

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/fortuna/apex/internal/timing"
)

// parseClassification extracts the classification table from a rendered
// archive page. The archive carries no lap-by-lap telemetry, so the result is
// a classification-only RawSession; position sequences get reconstructed from
// the grid during normalization.
func parseClassification(doc *goquery.Document, key timing.SessionKey) (*timing.RawSession, error) {
	raw := &timing.RawSession{Key: key}

	doc.Find("table.classification tbody tr").Each(func(i int, row *goquery.Selection) {
		entrant, ok := parseRow(row)
		if !ok {
			return
		}
		raw.Classification = append(raw.Classification, entrant)
		if entrant.LapsCompleted > raw.TotalLaps {
			raw.TotalLaps = entrant.LapsCompleted
		}
	})

	if len(raw.Classification) == 0 {
		return nil, fmt.Errorf("no classification rows found for %s", key)
	}

	return raw, nil
}

// parseRow extracts one entrant from a classification table row. Columns are
// position, driver code, driver name, team, grid, laps, time/status.
func parseRow(row *goquery.Selection) (timing.Entrant, bool) {
	cells := row.Find("td")
	if cells.Length() < 7 {
		return timing.Entrant{}, false
	}

	cell := func(i int) string {
		return strings.TrimSpace(cells.Eq(i).Text())
	}

	entrant := timing.Entrant{
		DriverID:    cell(1),
		DriverName:  cell(2),
		Constructor: cell(3),
	}
	if entrant.DriverID == "" {
		return timing.Entrant{}, false
	}

	entrant.GridPosition, _ = strconv.Atoi(cell(4))
	entrant.LapsCompleted, _ = strconv.Atoi(cell(5))
	entrant.Status = classifyRow(cell(0), cell(6))

	if entrant.Status == timing.ClassFinished {
		pos, err := strconv.Atoi(cell(0))
		if err != nil {
			return timing.Entrant{}, false
		}
		entrant.FinishPosition = pos
	}

	return entrant, true
}

// classifyRow maps the archive's position and time columns onto classification
// statuses. Non-finishers show a tag in the position column ("NC", "DQ",
// "DNS") or "DNF" in the time column; a numeric position with anything else
// in the time column is a finish.
func classifyRow(posText, timeText string) string {
	switch strings.ToUpper(posText) {
	case "NC":
		return timing.ClassNotClassified
	case "DQ", "DSQ":
		return timing.ClassDSQ
	case "DNS":
		return timing.ClassDNS
	}

	switch strings.ToUpper(timeText) {
	case "DNF":
		return timing.ClassRetired
	case "DNS":
		return timing.ClassDNS
	}

	if _, err := strconv.Atoi(posText); err != nil {
		return timing.ClassRetired
	}
	return timing.ClassFinished
}
