package handler

import (
	"net/http"
	"strconv"
)

// GET /
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HomeResponse{
		Status:      "online",
		Message:     "Steam Game Recommendation API",
		ModelLoaded: h.service.Ready(),
		TotalGames:  h.service.TotalGames(),
	})
}

// GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /api/games
func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	if !h.service.Ready() {
		writeModelUnavailable(w)
		return
	}

	q := gamesQuery{Page: 1, PerPage: 50}
	if v := r.URL.Query().Get("page"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid page parameter")
			return
		}
		q.Page = parsed
	}
	if v := r.URL.Query().Get("per_page"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid per_page parameter")
			return
		}
		q.PerPage = parsed
	}
	if err := validateStruct(q); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}

	games, total, err := h.service.Games(q.Page, q.PerPage)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, GamesResponse{
		Success:    true,
		TotalGames: total,
		Page:       q.Page,
		PerPage:    q.PerPage,
		Games:      games,
	})
}

// GET /api/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats()
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StatsResponse{Success: true, Stats: stats})
}
