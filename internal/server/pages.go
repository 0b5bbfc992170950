package server

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/trendlotto/invest/internal/modules/leaderboard"
	"github.com/trendlotto/invest/internal/modules/market"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageHandlers renders the HTML pages. Pages read cached snapshots and the
// local database only; anything that needs the network goes through the
// JSON API from the browser.
type PageHandlers struct {
	log         zerolog.Logger
	templates   *template.Template
	market      *market.Service
	leaderboard *leaderboard.Service
}

// NewPageHandlers parses the embedded template set.
func NewPageHandlers(marketSvc *market.Service, leaderboardSvc *leaderboard.Service, log zerolog.Logger) (*PageHandlers, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &PageHandlers{
		log:         log.With().Str("component", "pages").Logger(),
		templates:   tmpl,
		market:      marketSvc,
		leaderboard: leaderboardSvc,
	}, nil
}

// RegisterRoutes registers page routes
func (h *PageHandlers) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleDashboard)
	r.Get("/seasonality", h.HandleSeasonality)
	r.Get("/themes", h.HandleThemes)
	r.Get("/review", h.HandleReview)
	r.Get("/portfolio", h.HandlePortfolio)
	r.Get("/leaderboard", h.HandleLeaderboard)
	r.Get("/policies", h.HandlePolicies)
}

// HandleDashboard renders the money-flow dashboard with the theme ranking.
func (h *PageHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	flow := h.market.MoneyFlow()
	themes, mock := h.market.Themes()

	h.render(w, "dashboard.html", map[string]interface{}{
		"Flow":       flow,
		"Themes":     themes,
		"ThemesMock": mock,
	})
}

// HandleSeasonality renders the sector-by-month seasonality table.
func (h *PageHandlers) HandleSeasonality(w http.ResponseWriter, r *http.Request) {
	h.render(w, "seasonality.html", map[string]interface{}{
		"Sectors": market.Seasonality(),
		"Months":  []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
	})
}

// HandleThemes renders the theme ranking page.
func (h *PageHandlers) HandleThemes(w http.ResponseWriter, r *http.Request) {
	themes, mock := h.market.Themes()
	h.render(w, "themes.html", map[string]interface{}{
		"Themes": themes,
		"Mock":   mock,
	})
}

// HandleReview renders the stock review page shell. The browser loads the
// report itself so a slow scrape never blocks the page.
func (h *PageHandlers) HandleReview(w http.ResponseWriter, r *http.Request) {
	h.render(w, "review.html", map[string]interface{}{
		"Query": r.URL.Query().Get("ticker"),
	})
}

// HandlePortfolio renders the portfolio page shell. Holdings are loaded
// from the API with the user's token.
func (h *PageHandlers) HandlePortfolio(w http.ResponseWriter, r *http.Request) {
	h.render(w, "portfolio.html", nil)
}

// HandleLeaderboard renders the return ranking.
func (h *PageHandlers) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.leaderboard.Top(20)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load leaderboard")
	}
	h.render(w, "leaderboard.html", map[string]interface{}{
		"Entries": entries,
	})
}

// HandlePolicies renders the privacy policy and terms page.
func (h *PageHandlers) HandlePolicies(w http.ResponseWriter, r *http.Request) {
	h.render(w, "policies.html", nil)
}

func (h *PageHandlers) render(w http.ResponseWriter, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.log.Error().Err(err).Str("template", name).Msg("Failed to render page")
	}
}
