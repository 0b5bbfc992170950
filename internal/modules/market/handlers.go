package market

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/trendlotto/invest/internal/clients/naver"
)

// Handler handles market HTTP requests
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new market handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "market").Logger(),
	}
}

// RegisterRoutes registers market routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/market", func(r chi.Router) {
		r.Get("/flow", h.HandleMoneyFlow)
		r.Get("/themes", h.HandleThemes)
		r.Get("/themes/{name}", h.HandleThemeDetail)
		r.Get("/seasonality", h.HandleSeasonality)
	})
}

// HandleMoneyFlow returns the cached investor flow snapshot with its insight.
func (h *Handler) HandleMoneyFlow(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.MoneyFlow())
}

// HandleThemes returns the cached theme ranking.
func (h *Handler) HandleThemes(w http.ResponseWriter, r *http.Request) {
	themes, mock := h.service.Themes()
	if themes == nil {
		themes = []naver.Theme{}
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"themes": themes,
		"mock":   mock,
	})
}

// HandleThemeDetail returns one theme's leading stocks and diagnosis.
func (h *Handler) HandleThemeDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.ThemeDetail(chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, detail)
}

// HandleSeasonality returns the per-sector monthly win-rate table.
func (h *Handler) HandleSeasonality(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, Seasonality())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
