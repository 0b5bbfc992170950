package portfolio

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trendlotto/invest/internal/database"
	"github.com/trendlotto/invest/internal/domain"
)

type staticQuotes struct {
	prices map[string]float64
}

func (s *staticQuotes) GetQuote(ticker string) *domain.Quote {
	return &domain.Quote{
		Ticker: ticker,
		Price:  s.prices[ticker],
		Time:   time.Now(),
		Source: "static",
	}
}

func testService(t *testing.T, quotes QuoteGetter) (*Service, int64) {
	t.Helper()
	db, err := database.New(database.Config{
		Path: filepath.Join(t.TempDir(), "app.db"),
		Name: "app",
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { db.Close() })

	res, err := db.Exec(`
		INSERT INTO users (username, hashed_password, membership, created_at)
		VALUES ('alice', 'x', 'basic', ?)
	`, time.Now().Unix())
	require.NoError(t, err)
	userID, err := res.LastInsertId()
	require.NoError(t, err)

	repo := NewRepository(db.Conn(), zerolog.Nop())
	return NewService(repo, quotes, zerolog.Nop()), userID
}

func TestAddMergesWithWeightedAverage(t *testing.T) {
	s, userID := testService(t, nil)

	first, err := s.Add(userID, "005930", 100, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 100.0, first.AvgPrice)
	assert.Equal(t, 10.0, first.Qty)

	merged, err := s.Add(userID, "005930", 200, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 150.0, merged.AvgPrice)
	assert.Equal(t, 20.0, merged.Qty)
	assert.Equal(t, first.ID, merged.ID)

	holdings, err := s.repo.List(userID)
	require.NoError(t, err)
	require.Len(t, holdings, 1)
}

func TestAddValidation(t *testing.T) {
	s, userID := testService(t, nil)

	_, err := s.Add(userID, "", 100, 10, 0)
	assert.Error(t, err)

	_, err = s.Add(userID, "005930", 0, 10, 0)
	assert.Error(t, err)

	_, err = s.Add(userID, "005930", 100, -1, 0)
	assert.Error(t, err)
}

func TestRemoveScopedToOwner(t *testing.T) {
	s, userID := testService(t, nil)

	h, err := s.Add(userID, "005930", 100, 10, 0)
	require.NoError(t, err)

	err = s.Remove(userID+1, h.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	require.NoError(t, s.Remove(userID, h.ID))

	err = s.Remove(userID, h.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestListComputesReturns(t *testing.T) {
	quotes := &staticQuotes{prices: map[string]float64{"005930": 120}}
	s, userID := testService(t, quotes)

	_, err := s.Add(userID, "005930", 100, 10, 0)
	require.NoError(t, err)

	views, err := s.List(userID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, 120.0, views[0].CurrentPrice)
	assert.InDelta(t, 20.0, views[0].ReturnPct, 1e-9)
}

func TestTotalReturnPctWeightedByCost(t *testing.T) {
	quotes := &staticQuotes{prices: map[string]float64{
		"005930": 110, // +10% on cost 1000
		"000660": 90,  // -10% on cost 3000
	}}
	s, userID := testService(t, quotes)

	_, err := s.Add(userID, "005930", 100, 10, 0)
	require.NoError(t, err)
	_, err = s.Add(userID, "000660", 100, 30, 0)
	require.NoError(t, err)

	total, err := s.TotalReturnPct(userID)
	require.NoError(t, err)
	// (100 + -300) / 4000 = -5%
	assert.InDelta(t, -5.0, total, 1e-9)
}
