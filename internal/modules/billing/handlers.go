package billing

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/trendlotto/invest/internal/modules/auth"
)

// Handler handles billing HTTP requests
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new billing handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "billing").Logger(),
	}
}

// RegisterRoutes registers billing routes. Callers wrap them with the auth
// middleware.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/billing", func(r chi.Router) {
		r.Post("/confirm", h.HandleConfirmPayment)
		r.Post("/downgrade", h.HandleDowngrade)
		r.Get("/history", h.HandleHistory)
	})
}

type confirmRequest struct {
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	ProviderRef string `json:"provider_ref"`
}

// HandleConfirmPayment records a payment and upgrades the user.
func (h *Handler) HandleConfirmPayment(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Amount == "" || req.ProviderRef == "" {
		h.writeError(w, http.StatusBadRequest, "amount and provider_ref are required")
		return
	}

	payment, err := h.service.ConfirmPayment(user.ID, req.Amount, req.Currency, req.ProviderRef)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusCreated, payment)
}

// HandleDowngrade drops the user to the basic tier.
func (h *Handler) HandleDowngrade(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.service.Downgrade(user.ID); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"membership": "basic"})
}

// HandleHistory returns the user's payment history.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	payments, err := h.service.History(user.ID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load payment history")
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if payments == nil {
		payments = []Payment{}
	}
	h.writeJSON(w, http.StatusOK, payments)
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
