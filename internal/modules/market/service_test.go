package market

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trendlotto/invest/internal/cache"
	"github.com/trendlotto/invest/internal/clients/naver"
)

type fakeScraper struct {
	flows  []naver.FlowRow
	themes []naver.Theme
	stocks []naver.ThemeStock
	err    error
}

func (f *fakeScraper) GetMoneyFlow() ([]naver.FlowRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.flows, nil
}

func (f *fakeScraper) GetThemeList() ([]naver.Theme, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.themes, nil
}

func (f *fakeScraper) GetThemeTopStocks(themeURL string) ([]naver.ThemeStock, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.stocks, nil
}

func newService(t *testing.T, scraper Scraper) *Service {
	t.Helper()
	snapshots := cache.NewSnapshotStore(nil, zerolog.Nop())
	return NewService(scraper, snapshots, zerolog.Nop())
}

func TestMoneyFlowServesMockBeforeFirstScrape(t *testing.T) {
	s := newService(t, &fakeScraper{})

	snap := s.MoneyFlow()
	assert.True(t, snap.Mock)
	require.Len(t, snap.Rows, 5)
	assert.NotEmpty(t, snap.Insight)
}

func TestRefreshThenServeScrapedSnapshot(t *testing.T) {
	scraper := &fakeScraper{
		flows:  []naver.FlowRow{{Date: "2026-08-29", Retail: -100, Foreign: 900, Institutional: 400}},
		themes: []naver.Theme{{Name: "조선", ChangeRate: 2.4, Link: "https://example.test/theme"}},
	}
	s := newService(t, scraper)

	require.NoError(t, s.Refresh())

	snap := s.MoneyFlow()
	assert.False(t, snap.Mock)
	require.Len(t, snap.Rows, 1)
	assert.Contains(t, snap.Insight, "양매수")

	themes, mock := s.Themes()
	assert.False(t, mock)
	require.Len(t, themes, 1)
	assert.Equal(t, "조선", themes[0].Name)
}

func TestRefreshFailureKeepsPreviousSnapshot(t *testing.T) {
	scraper := &fakeScraper{
		flows:  []naver.FlowRow{{Date: "2026-08-29", Retail: 0, Foreign: -10, Institutional: -20}},
		themes: []naver.Theme{{Name: "조선", ChangeRate: 2.4}},
	}
	s := newService(t, scraper)
	require.NoError(t, s.Refresh())

	scraper.err = fmt.Errorf("page structure changed")
	assert.Error(t, s.Refresh())

	snap := s.MoneyFlow()
	assert.False(t, snap.Mock)
	require.Len(t, snap.Rows, 1)
	assert.Equal(t, "2026-08-29", snap.Rows[0].Date)
}

func TestFlowInsightBranches(t *testing.T) {
	cases := []struct {
		row      naver.FlowRow
		contains string
	}{
		{naver.FlowRow{Foreign: 100, Institutional: 50}, "양매수"},
		{naver.FlowRow{Foreign: 100, Institutional: -50}, "외국인이 100억"},
		{naver.FlowRow{Foreign: -100, Institutional: 50}, "기관이 50억"},
		{naver.FlowRow{Foreign: -100, Institutional: -50}, "양매도"},
	}
	for _, tc := range cases {
		assert.Contains(t, flowInsight(tc.row), tc.contains)
	}
}

func TestThemeScenarioThresholds(t *testing.T) {
	assert.Contains(t, themeScenario(3.5).Title, "강한 자금 유입")
	assert.Contains(t, themeScenario(1.0).Title, "완만한 상승세")
	assert.Contains(t, themeScenario(0.0).Title, "조정 중")
	assert.Contains(t, themeScenario(-2.0).Title, "조정 중")
}

func TestThemeDetailLoadsStocks(t *testing.T) {
	scraper := &fakeScraper{
		themes: []naver.Theme{{Name: "조선", ChangeRate: 4.0, Link: "https://example.test/theme"}},
		stocks: []naver.ThemeStock{{Name: "HD한국조선해양", Price: "120,000", ChangeRate: "+5.2%"}},
	}
	s := newService(t, scraper)
	require.NoError(t, s.Refresh())

	detail, err := s.ThemeDetail("조선")
	require.NoError(t, err)
	assert.Contains(t, detail.Scenario.Title, "강한 자금 유입")
	require.Len(t, detail.Stocks, 1)

	_, err = s.ThemeDetail("없는테마")
	assert.Error(t, err)
}

func TestSeasonalityTableShape(t *testing.T) {
	table := Seasonality()
	assert.Len(t, table, 6)
	for sector, months := range table {
		for i, pct := range months {
			assert.GreaterOrEqualf(t, pct, 0, "%s month %d", sector, i+1)
			assert.LessOrEqualf(t, pct, 100, "%s month %d", sector, i+1)
		}
	}
}
