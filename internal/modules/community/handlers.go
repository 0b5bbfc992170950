package community

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/trendlotto/invest/internal/modules/auth"
)

const maxCommentLength = 500

// Handler handles community HTTP requests
type Handler struct {
	repo *Repository
	log  zerolog.Logger
}

// NewHandler creates a new community handler
func NewHandler(repo *Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "community").Logger(),
	}
}

// RegisterPublicRoutes registers read-only community routes.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/comments/{ticker}", h.HandleListComments)
	r.Get("/votes/{ticker}", h.HandleVoteTally)
}

// RegisterProtectedRoutes registers routes that require a session.
func (h *Handler) RegisterProtectedRoutes(r chi.Router) {
	r.Post("/comments", h.HandleAddComment)
	r.Post("/votes", h.HandleCastVote)
}

type commentRequest struct {
	Ticker  string `json:"ticker"`
	Content string `json:"content"`
}

// HandleAddComment saves a discussion comment.
func (h *Handler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	content := strings.TrimSpace(req.Content)
	if req.Ticker == "" || content == "" {
		h.writeError(w, http.StatusBadRequest, "ticker and content are required")
		return
	}
	if len([]rune(content)) > maxCommentLength {
		h.writeError(w, http.StatusBadRequest, "comment is too long")
		return
	}

	id, err := h.repo.AddComment(user.ID, req.Ticker, content)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to add comment")
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]interface{}{"id": id})
}

// HandleListComments returns the latest comments for a ticker.
func (h *Handler) HandleListComments(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	comments, err := h.repo.ListComments(ticker, 50)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list comments")
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if comments == nil {
		comments = []Comment{}
	}
	h.writeJSON(w, http.StatusOK, comments)
}

type voteRequest struct {
	Ticker   string `json:"ticker"`
	VoteType string `json:"vote_type"`
}

// HandleCastVote records or replaces the user's BUY/SELL/HOLD vote.
func (h *Handler) HandleCastVote(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	voteType := strings.ToUpper(req.VoteType)
	if voteType != VoteBuy && voteType != VoteSell && voteType != VoteHold {
		h.writeError(w, http.StatusBadRequest, "vote must be BUY, SELL or HOLD")
		return
	}
	if req.Ticker == "" {
		h.writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	if err := h.repo.CastVote(user.ID, req.Ticker, voteType); err != nil {
		h.log.Error().Err(err).Msg("Failed to cast vote")
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	tally, err := h.repo.VoteTally(req.Ticker)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to tally votes")
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.writeJSON(w, http.StatusOK, tally)
}

// HandleVoteTally returns the vote distribution for a ticker.
func (h *Handler) HandleVoteTally(w http.ResponseWriter, r *http.Request) {
	tally, err := h.repo.VoteTally(chi.URLParam(r, "ticker"))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to tally votes")
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.writeJSON(w, http.StatusOK, tally)
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
