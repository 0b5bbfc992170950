package seo

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func testRouter() http.Handler {
	h := NewHandler("https://invest.example.com", "pub-9065075656013134", zerolog.Nop())
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	r.Route("/api", h.RegisterAPIRoutes)
	return r
}

func get(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestSitemapListsPages(t *testing.T) {
	rec := get(t, testRouter(), "/sitemap.xml")
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<urlset")
	assert.Contains(t, body, "https://invest.example.com/review")
	assert.Contains(t, body, "https://invest.example.com/leaderboard")
}

func TestRobotsPointsToSitemap(t *testing.T) {
	rec := get(t, testRouter(), "/robots.txt")
	assert.Contains(t, rec.Body.String(), "Sitemap: https://invest.example.com/sitemap.xml")
	assert.Contains(t, rec.Body.String(), "Allow: /")
}

func TestAdsTxtLine(t *testing.T) {
	rec := get(t, testRouter(), "/ads.txt")
	assert.Equal(t, "google.com, pub-9065075656013134, DIRECT, f08c47fec0942fa0\n", rec.Body.String())
}

func TestOGMetaForTicker(t *testing.T) {
	rec := get(t, testRouter(), "/api/og-meta/005930")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "005930")
	assert.Contains(t, rec.Body.String(), "review?ticker=005930")
}
