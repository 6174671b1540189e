package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/AsfandAhmad/SteamGamesRecommender/internal/domain"
	"github.com/AsfandAhmad/SteamGamesRecommender/internal/service"
)

const maxBodyBytes = 1 << 20

// POST /api/recommend
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	if !h.service.Ready() {
		writeModelUnavailable(w)
		return
	}

	var req recommendRequest
	if err := decodeBody(w, r, &req); err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "Missing review", "Please provide a review text in the request body")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid request", "Request body must be a JSON object")
		return
	}
	// an explicit null is treated like an absent key
	if req.Review == nil {
		writeError(w, http.StatusBadRequest, "Missing review", "Please provide a review text in the request body")
		return
	}
	review, ok := req.Review.(string)
	if !ok || strings.TrimSpace(review) == "" {
		writeError(w, http.StatusBadRequest, "Invalid review", "Review text must be a non-empty string")
		return
	}

	result, err := h.service.Recommend(r.Context(), review, topNOrZero(req.TopN))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	if len(result.Recommendations) == 0 {
		writeJSON(w, http.StatusOK, EmptyRecommendationResponse{
			Success:         true,
			UserReview:      review,
			Recommendations: []domain.Recommendation{},
			Message:         noMatchMessage,
		})
		return
	}

	writeJSON(w, http.StatusOK, RecommendationResponse{
		Success:              true,
		UserReview:           review,
		TotalRecommendations: len(result.Recommendations),
		Recommendations:      result.Recommendations,
		CacheHit:             result.CacheHit,
	})
}

// POST /api/profile
func (h *Handler) RecommendProfile(w http.ResponseWriter, r *http.Request) {
	if !h.service.Ready() {
		writeModelUnavailable(w)
		return
	}

	var req profileRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "Request body must be a JSON object")
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}

	recs, err := h.service.RecommendProfile(r.Context(), req.Preferences, req.Genres, topNOrZero(req.TopN))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ProfileResponse{
		Success:              true,
		Profile:              service.BuildProfile(req.Preferences, req.Genres),
		TotalRecommendations: len(recs),
		Recommendations:      recs,
	})
}

// POST /api/recommend/batch
func (h *Handler) RecommendBatch(w http.ResponseWriter, r *http.Request) {
	if !h.service.Ready() {
		writeModelUnavailable(w)
		return
	}

	var req batchRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "Request body must be a JSON object")
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}

	resp, err := h.service.RecommendBatch(r.Context(), req.Reviews, topNOrZero(req.TopN))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrModelUnavailable):
		writeModelUnavailable(w)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		writeError(w, http.StatusServiceUnavailable, "request_timeout", "Request timed out, please try again")
	default:
		h.log.WithError(err).Error("recommendation failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "An error occurred while processing your request")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}
