package handler

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/AsfandAhmad/SteamGamesRecommender/internal/service"
)

type Handler struct {
	service *service.Service
	log     *logrus.Entry
}

func NewHandler(svc *service.Service, log *logrus.Entry) *Handler {
	return &Handler{service: svc, log: log.WithField("component", "handler")}
}

// write JSON response
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writes JSON error response.
func writeError(w http.ResponseWriter, status int, errCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Success: false,
		Error:   errCode,
		Message: message,
	})
}

func writeModelUnavailable(w http.ResponseWriter) {
	writeError(w, http.StatusServiceUnavailable, "Model not loaded", "Recommendation system is not initialized")
}

// NotFound answers unknown routes.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, "Not found", "The requested endpoint does not exist")
}

func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed", "The method is not allowed for the requested URL")
}

// Recoverer turns a panic in a handler into a JSON 500.
func Recoverer(log *logrus.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					log.WithField("panic", rec).WithField("path", r.URL.Path).Error("handler panicked")
					writeError(w, http.StatusInternalServerError, "Internal server error", "An unexpected error occurred")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
