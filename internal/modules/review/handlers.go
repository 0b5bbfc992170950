package review

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles review HTTP requests
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new review handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "review").Logger(),
	}
}

// RegisterRoutes registers review routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/review", h.HandleReview)
}

// HandleReview returns the full review report for a ticker or company name.
// Defaults to Samsung Electronics like the review page itself.
func (h *Handler) HandleReview(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("ticker")
	if query == "" {
		query = "005930"
	}

	report := h.service.Build(query)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(report); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
