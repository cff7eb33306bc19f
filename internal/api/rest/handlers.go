package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/gridrank/gridrank/internal/service"
)

// Handler contains dependencies for HTTP handlers.
type Handler struct {
	rankings      *service.RankingService
	defaultSeason int
}

// NewHandler creates a new handler.
func NewHandler(rankings *service.RankingService, defaultSeason int) *Handler {
	return &Handler{
		rankings:      rankings,
		defaultSeason: defaultSeason,
	}
}

// HealthCheck handles health check requests.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "gridrank",
	})
}

// GetRankings returns every ranking source for one week of a season.
// Defaults to the last played week when no week is given.
func (h *Handler) GetRankings(w http.ResponseWriter, r *http.Request) {
	year := h.queryYear(r)

	season, err := h.rankings.SeasonRankings(r.Context(), year)
	if err != nil {
		respondError(w, http.StatusBadGateway, "Failed to evaluate season rankings", err)
		return
	}

	week := season.LastPlayedWeek
	if weekStr := r.URL.Query().Get("week"); weekStr != "" {
		parsed, err := strconv.Atoi(weekStr)
		if err != nil || parsed < 1 {
			respondError(w, http.StatusBadRequest, "Invalid week", err)
			return
		}
		week = parsed
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"year":    year,
		"week":    week,
		"sources": season.Rankings.WeekSources(week),
		"records": season.Records,
	})
}

// GetRankingSources lists the ranking sources available for a season.
func (h *Handler) GetRankingSources(w http.ResponseWriter, r *http.Request) {
	year := h.queryYear(r)

	season, err := h.rankings.SeasonRankings(r.Context(), year)
	if err != nil {
		respondError(w, http.StatusBadGateway, "Failed to evaluate season rankings", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"year":    year,
		"sources": season.Rankings.Sources(),
	})
}

// GetProjectedRankings returns a what-if ranking with future games decided
// synthetically through the target week.
func (h *Handler) GetProjectedRankings(w http.ResponseWriter, r *http.Request) {
	year := h.queryYear(r)

	season, err := h.rankings.SeasonRankings(r.Context(), year)
	if err != nil {
		respondError(w, http.StatusBadGateway, "Failed to evaluate season rankings", err)
		return
	}

	asOf := season.LastPlayedWeek
	if weekStr := r.URL.Query().Get("week"); weekStr != "" {
		if asOf, err = strconv.Atoi(weekStr); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid week", err)
			return
		}
	}
	through := season.LastWeek
	if throughStr := r.URL.Query().Get("through"); throughStr != "" {
		if through, err = strconv.Atoi(throughStr); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid through week", err)
			return
		}
	}

	projected, err := h.rankings.ProjectedRankings(r.Context(), year, asOf, through)
	if err != nil {
		respondError(w, http.StatusBadGateway, "Failed to project rankings", err)
		return
	}

	respondJSON(w, http.StatusOK, projected)
}

// GetTeams returns the season's team list with logos.
func (h *Handler) GetTeams(w http.ResponseWriter, r *http.Request) {
	year := h.queryYear(r)

	teams, err := h.rankings.Teams(r.Context(), year)
	if err != nil {
		respondError(w, http.StatusBadGateway, "Failed to fetch teams", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"year":  year,
		"teams": teams,
	})
}

// GetTeamSchedule returns one team's schedule as of a week, with opponent
// ranks from the requested ranking source.
func (h *Handler) GetTeamSchedule(w http.ResponseWriter, r *http.Request) {
	year := h.queryYear(r)

	team, err := h.resolveTeam(r.Context(), year, mux.Vars(r)["team"])
	if err != nil {
		respondError(w, http.StatusNotFound, "Team not found", err)
		return
	}

	season, err := h.rankings.SeasonRankings(r.Context(), year)
	if err != nil {
		respondError(w, http.StatusBadGateway, "Failed to evaluate season rankings", err)
		return
	}

	week := season.LastPlayedWeek
	if weekStr := r.URL.Query().Get("week"); weekStr != "" {
		if week, err = strconv.Atoi(weekStr); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid week", err)
			return
		}
	}
	source := r.URL.Query().Get("source")
	if source == "" {
		source = service.SourceMarginUnaware
	}

	entries, err := h.rankings.TeamSchedule(r.Context(), year, team, week, source)
	if err != nil {
		respondError(w, http.StatusBadGateway, "Failed to build schedule", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"year":     year,
		"team":     team,
		"week":     week,
		"source":   source,
		"schedule": entries,
	})
}

// GetTeamRecord returns a team's aggregate win/loss record.
func (h *Handler) GetTeamRecord(w http.ResponseWriter, r *http.Request) {
	year := h.queryYear(r)

	team, err := h.resolveTeam(r.Context(), year, mux.Vars(r)["team"])
	if err != nil {
		respondError(w, http.StatusNotFound, "Team not found", err)
		return
	}

	season, err := h.rankings.SeasonRankings(r.Context(), year)
	if err != nil {
		respondError(w, http.StatusBadGateway, "Failed to evaluate season rankings", err)
		return
	}

	record, ok := season.Records[team]
	if !ok {
		// A known team with no games has an empty record, not an error.
		record = "0-0"
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"team":   team,
		"record": record,
	})
}

// resolveTeam matches a user-supplied team name against the season's team
// list, tolerating case differences and small typos.
func (h *Handler) resolveTeam(ctx context.Context, year int, name string) (string, error) {
	teams, err := h.rankings.Teams(ctx, year)
	if err != nil {
		return "", err
	}

	best := ""
	bestDistance := -1
	for _, team := range teams {
		if strings.EqualFold(team.School, name) {
			return team.School, nil
		}
		distance := fuzzy.LevenshteinDistance(strings.ToLower(name), strings.ToLower(team.School))
		if bestDistance == -1 || distance < bestDistance {
			best = team.School
			bestDistance = distance
		}
	}

	// Accept a close fuzzy match; a wildly different name is a 404.
	if best != "" && bestDistance <= len(name)/2 {
		return best, nil
	}
	return "", &teamNotFoundError{name: name}
}

type teamNotFoundError struct{ name string }

func (e *teamNotFoundError) Error() string { return "no team matching " + strconv.Quote(e.name) }

func (h *Handler) queryYear(r *http.Request) int {
	if yearStr := r.URL.Query().Get("year"); yearStr != "" {
		if year, err := strconv.Atoi(yearStr); err == nil {
			return year
		}
	}
	return h.defaultSeason
}

// respondJSON writes a JSON response.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response.
func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	respondJSON(w, status, response)
}
