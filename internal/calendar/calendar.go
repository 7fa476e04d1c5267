// Package calendar holds the fixed season calendar that defines the
// chronological fold order for championship standings.
package calendar

import (
	"fmt"
	"time"

	"github.com/fortuna/apex/internal/timing"
)

// RaceEvent is one round on the season calendar. Chapter is external-facing
// narrative context and never participates in any invariant.
type RaceEvent struct {
	Round     int       `json:"round"`
	Name      string    `json:"name"`
	Circuit   string    `json:"circuit"`
	CircuitKm float64   `json:"circuit_km"` // lap length, for average-speed columns
	Date      time.Time `json:"date"`
	Chapter   string    `json:"chapter,omitempty"`
	HasSprint bool      `json:"has_sprint"`
}

// Calendar is the immutable, ordered sequence of a season's rounds.
type Calendar struct {
	Season int
	events []RaceEvent
}

// Season2024 returns the 24-round 2024 calendar. Loaded once at process
// start; rounds are strictly increasing by date.
func Season2024() *Calendar {
	d := func(month time.Month, day int) time.Time {
		return time.Date(2024, month, day, 0, 0, 0, 0, time.UTC)
	}
	return &Calendar{
		Season: 2024,
		events: []RaceEvent{
			{1, "Bahrain", "Bahrain International Circuit", 5.412, d(time.March, 2), "Season Opener", false},
			{2, "Saudi Arabia", "Jeddah Corniche Circuit", 6.174, d(time.March, 9), "Desert Duel", false},
			{3, "Australia", "Melbourne Grand Prix Circuit", 5.278, d(time.March, 24), "Down Under Drama", false},
			{4, "Japan", "Suzuka International Racing Course", 5.807, d(time.April, 7), "Suzuka Spectacle", false},
			{5, "China", "Shanghai International Circuit", 5.451, d(time.April, 21), "Shanghai Sprint Weekend", true},
			{6, "Miami", "Miami International Autodrome", 5.412, d(time.May, 5), "Title Fight Ignites", true},
			{7, "Emilia Romagna", "Imola Circuit", 4.909, d(time.May, 19), "Imola Intensity", false},
			{8, "Monaco", "Circuit de Monaco", 3.337, d(time.May, 26), "Monte Carlo Magic", false},
			{9, "Canada", "Circuit Gilles Villeneuve", 4.361, d(time.June, 9), "Montreal Madness", false},
			{10, "Spain", "Circuit de Barcelona-Catalunya", 4.657, d(time.June, 23), "Barcelona Battle", false},
			{11, "Austria", "Red Bull Ring", 4.318, d(time.June, 30), "Red Bull Ring Rivalry", true},
			{12, "Great Britain", "Silverstone Circuit", 5.891, d(time.July, 7), "Silverstone Showdown", false},
			{13, "Hungary", "Hungaroring", 4.381, d(time.July, 21), "Budapest Brilliance", false},
			{14, "Belgium", "Circuit de Spa-Francorchamps", 7.004, d(time.July, 28), "Spa Spectacular", false},
			{15, "Netherlands", "Circuit Zandvoort", 4.259, d(time.August, 25), "Home Victory", false},
			{16, "Italy", "Autodromo Nazionale di Monza", 5.793, d(time.September, 1), "Temple of Speed", false},
			{17, "Azerbaijan", "Baku City Circuit", 6.003, d(time.September, 15), "Baku Street Fight", false},
			{18, "Singapore", "Marina Bay Street Circuit", 4.940, d(time.September, 22), "Night Race", false},
			{19, "United States", "Circuit of the Americas", 5.513, d(time.October, 20), "Austin Action", true},
			{20, "Mexico", "Autodromo Hermanos Rodriguez", 4.304, d(time.October, 27), "Mexico City Altitude", false},
			{21, "Brazil", "Interlagos Circuit", 4.309, d(time.November, 3), "Championship Masterpiece", true},
			{22, "Las Vegas", "Las Vegas Strip Circuit", 6.201, d(time.November, 23), "Sin City Speed", false},
			{23, "Qatar", "Lusail International Circuit", 5.419, d(time.December, 1), "Final Push", true},
			{24, "Abu Dhabi", "Yas Marina Circuit", 5.281, d(time.December, 8), "Season Finale", false},
		},
	}
}

// Rounds returns the number of rounds on the calendar.
func (c *Calendar) Rounds() int { return len(c.events) }

// Event returns the calendar entry for a round.
func (c *Calendar) Event(round int) (RaceEvent, error) {
	if round < 1 || round > len(c.events) {
		return RaceEvent{}, fmt.Errorf("round %d outside calendar 1..%d", round, len(c.events))
	}
	return c.events[round-1], nil
}

// Events returns a copy of all rounds in chronological order.
func (c *Calendar) Events() []RaceEvent {
	out := make([]RaceEvent, len(c.events))
	copy(out, c.events)
	return out
}

// RaceKey returns the cache key for a round's race session.
func (c *Calendar) RaceKey(round int) timing.SessionKey {
	return timing.SessionKey{Season: c.Season, Round: round, Type: timing.SessionRace}
}

// SprintKey returns the cache key for a round's sprint session and whether
// the round has one.
func (c *Calendar) SprintKey(round int) (timing.SessionKey, bool) {
	ev, err := c.Event(round)
	if err != nil || !ev.HasSprint {
		return timing.SessionKey{}, false
	}
	return timing.SessionKey{Season: c.Season, Round: round, Type: timing.SessionSprint}, true
}
