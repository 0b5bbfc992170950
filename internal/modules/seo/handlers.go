// Package seo serves the crawler-facing endpoints: sitemap, robots, the
// AdSense ads.txt line and social-preview metadata.
package seo

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// pagePaths are the public pages listed in the sitemap.
var pagePaths = []string{
	"/",
	"/seasonality",
	"/themes",
	"/review",
	"/portfolio",
	"/leaderboard",
	"/policies",
}

// Handler handles SEO HTTP requests
type Handler struct {
	baseURL    string
	adsensePub string
	log        zerolog.Logger
}

// NewHandler creates a new SEO handler
func NewHandler(baseURL, adsensePubID string, log zerolog.Logger) *Handler {
	return &Handler{
		baseURL:    baseURL,
		adsensePub: adsensePubID,
		log:        log.With().Str("handler", "seo").Logger(),
	}
}

// RegisterRoutes registers the crawler routes at the server root.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/sitemap.xml", h.HandleSitemap)
	r.Get("/robots.txt", h.HandleRobots)
	r.Get("/ads.txt", h.HandleAdsTxt)
}

// RegisterAPIRoutes registers the social-preview endpoint under /api.
func (h *Handler) RegisterAPIRoutes(r chi.Router) {
	r.Get("/og-meta/{ticker}", h.HandleOGMeta)
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// HandleSitemap lists the public pages.
func (h *Handler) HandleSitemap(w http.ResponseWriter, r *http.Request) {
	today := time.Now().Format("2006-01-02")
	set := urlSet{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, path := range pagePaths {
		set.URLs = append(set.URLs, sitemapURL{Loc: h.baseURL + path, LastMod: today})
	}

	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(xml.Header))
	if err := xml.NewEncoder(w).Encode(set); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode sitemap")
	}
}

// HandleRobots allows all crawlers and names the sitemap.
func (h *Handler) HandleRobots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintf(w, "User-agent: *\nAllow: /\n\nSitemap: %s/sitemap.xml\n", h.baseURL)
}

// HandleAdsTxt serves the AdSense ownership line.
func (h *Handler) HandleAdsTxt(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintf(w, "google.com, %s, DIRECT, f08c47fec0942fa0\n", h.adsensePub)
}

// HandleOGMeta returns Open Graph tags for a ticker's review page, used by
// link previews.
func (h *Handler) HandleOGMeta(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	meta := map[string]string{
		"og:title":       fmt.Sprintf("%s 매수 타이밍 진단 | Trend-Lotto Invest", ticker),
		"og:description": fmt.Sprintf("%s 기술적 지표 기반 시그널 점수와 수급/뉴스 분석을 확인하세요.", ticker),
		"og:url":         fmt.Sprintf("%s/review?ticker=%s", h.baseURL, ticker),
		"og:type":        "website",
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(meta); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
