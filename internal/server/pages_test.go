package server

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trendlotto/invest/internal/cache"
	"github.com/trendlotto/invest/internal/database"
	"github.com/trendlotto/invest/internal/modules/auth"
	"github.com/trendlotto/invest/internal/modules/leaderboard"
	"github.com/trendlotto/invest/internal/modules/market"
)

type noReturns struct{}

func (noReturns) TotalReturnPct(userID int64) (float64, error) { return 0, nil }

func newPagesHarness(t *testing.T) http.Handler {
	t.Helper()

	db, err := database.New(database.Config{
		Path: filepath.Join(t.TempDir(), "app.db"),
		Name: "app",
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { db.Close() })

	snapshots := cache.NewSnapshotStore(nil, zerolog.Nop())
	marketSvc := market.NewService(nil, snapshots, zerolog.Nop())
	users := auth.NewUserRepository(db.Conn(), zerolog.Nop())
	lbSvc := leaderboard.NewService(users, noReturns{}, zerolog.Nop())

	pages, err := NewPageHandlers(marketSvc, lbSvc, zerolog.Nop())
	require.NoError(t, err)

	r := chi.NewRouter()
	pages.RegisterRoutes(r)
	return r
}

func TestDashboardRendersMockSnapshot(t *testing.T) {
	router := newPagesHarness(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	// Before the first scrape the page serves sample data with a notice.
	assert.Contains(t, rec.Body.String(), "샘플 데이터")
}

func TestSeasonalityRendersAllSectors(t *testing.T) {
	router := newPagesHarness(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/seasonality", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	for sector := range market.Seasonality() {
		assert.Contains(t, body, sector)
	}
	assert.Contains(t, body, "12월")
}

func TestLeaderboardPageRendersEmptyRanking(t *testing.T) {
	router := newPagesHarness(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leaderboard", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "수익률 랭킹")
}

func TestPolicyAndShellPagesRender(t *testing.T) {
	router := newPagesHarness(t)

	for _, path := range []string{"/policies", "/review", "/portfolio", "/themes"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestSystemStatusReportsProcessStats(t *testing.T) {
	h := NewSystemHandlers(t.TempDir(), zerolog.Nop())

	rec := httptest.NewRecorder()
	h.HandleStatus(rec, httptest.NewRequest(http.MethodGet, "/api/system/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"running"`)
	assert.Contains(t, rec.Body.String(), `"goroutines"`)
}
