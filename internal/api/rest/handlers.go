package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/fortuna/apex/internal/ingest"
	"github.com/fortuna/apex/internal/season"
	"github.com/fortuna/apex/internal/timing"
)

// Handler contains dependencies for HTTP handlers
type Handler struct {
	orchestrator *season.Orchestrator
}

// NewHandler creates a new handler
func NewHandler(orchestrator *season.Orchestrator) *Handler {
	return &Handler{orchestrator: orchestrator}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":        "healthy",
		"service":       "apex",
		"season":        h.orchestrator.Calendar().Season,
		"rounds_folded": h.orchestrator.Rounds(),
	})
}

// GetCalendar returns the season calendar
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	cal := h.orchestrator.Calendar()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"season": cal.Season,
		"events": cal.Events(),
	})
}

// GetRoundResults returns the results table for a round's race, or its
// sprint with ?session=sprint
func (h *Handler) GetRoundResults(w http.ResponseWriter, r *http.Request) {
	round, ok := h.roundParam(w, r)
	if !ok {
		return
	}

	cal := h.orchestrator.Calendar()
	key := cal.RaceKey(round)
	if r.URL.Query().Get("session") == "sprint" {
		sprintKey, hasSprint := cal.SprintKey(round)
		if !hasSprint {
			respondError(w, http.StatusNotFound, "Round has no sprint session", nil)
			return
		}
		key = sprintKey
	}

	table, ok := h.orchestrator.Table(key)
	if !ok {
		respondError(w, http.StatusNotFound, "Round not processed yet", nil)
		return
	}
	respondJSON(w, http.StatusOK, table)
}

// GetRoundProgression returns per-driver position traces for a round.
// Optional ?drivers=VER,NOR restricts the selection.
func (h *Handler) GetRoundProgression(w http.ResponseWriter, r *http.Request) {
	round, ok := h.roundParam(w, r)
	if !ok {
		return
	}

	var drivers []string
	if param := r.URL.Query().Get("drivers"); param != "" {
		drivers = strings.Split(param, ",")
	}

	prog, err := h.orchestrator.Progression(r.Context(), round, drivers)
	if err != nil {
		respondLoadError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, prog)
}

// GetRoundGaps returns gap-to-leader traces for a round
func (h *Handler) GetRoundGaps(w http.ResponseWriter, r *http.Request) {
	round, ok := h.roundParam(w, r)
	if !ok {
		return
	}

	gaps, err := h.orchestrator.Gaps(r.Context(), round)
	if err != nil {
		respondLoadError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, gaps)
}

// GetStandings returns the championship standings after a given round
func (h *Handler) GetStandings(w http.ResponseWriter, r *http.Request) {
	round, ok := h.roundParam(w, r)
	if !ok {
		return
	}

	snap, ok := h.orchestrator.SnapshotAt(round)
	if !ok {
		respondError(w, http.StatusNotFound, "Round not folded yet", nil)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// GetFinalStandings returns the most recent standings snapshot
func (h *Handler) GetFinalStandings(w http.ResponseWriter, r *http.Request) {
	snap := h.orchestrator.Latest()
	if snap == nil {
		respondError(w, http.StatusNotFound, "No rounds folded yet", nil)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"final":    snap.Round == h.orchestrator.Calendar().Rounds(),
		"standings": snap,
	})
}

// ProcessSeason folds a range of rounds. The fold is synchronous and
// strictly ordered; processing stops at the first failed round.
func (h *Handler) ProcessSeason(w http.ResponseWriter, r *http.Request) {
	cal := h.orchestrator.Calendar()

	from := h.orchestrator.Rounds() + 1
	to := cal.Rounds()
	if param := r.URL.Query().Get("to"); param != "" {
		v, err := strconv.Atoi(param)
		if err != nil || v < 1 || v > cal.Rounds() {
			respondError(w, http.StatusBadRequest, "Invalid to parameter", err)
			return
		}
		to = v
	}

	if err := h.orchestrator.ProcessRounds(r.Context(), from, to); err != nil {
		respondError(w, http.StatusBadGateway, "Season processing failed", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":       "Season processed",
		"rounds_folded": h.orchestrator.Rounds(),
	})
}

// roundParam parses and bounds-checks the {round} path variable
func (h *Handler) roundParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	round, err := strconv.Atoi(mux.Vars(r)["round"])
	if err != nil || round < 1 || round > h.orchestrator.Calendar().Rounds() {
		respondError(w, http.StatusBadRequest, "Invalid round", err)
		return 0, false
	}
	return round, true
}

// respondLoadError maps loader failures onto HTTP statuses
func respondLoadError(w http.ResponseWriter, err error) {
	var unavailable *ingest.DataUnavailable
	if errors.As(err, &unavailable) {
		respondError(w, http.StatusBadGateway, "Session data unavailable", err)
		return
	}
	var malformed *timing.MalformedSessionError
	if errors.As(err, &malformed) {
		respondError(w, http.StatusUnprocessableEntity, "Session data malformed", err)
		return
	}
	respondError(w, http.StatusInternalServerError, "Failed to load session", err)
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}

	if err != nil {
		response["details"] = err.Error()
	}

	json.NewEncoder(w).Encode(response)
}
