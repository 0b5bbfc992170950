// Package market serves the dashboard's money-flow, theme and seasonality
// data from cached snapshots, refreshed in the background.
package market

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/trendlotto/invest/internal/cache"
	"github.com/trendlotto/invest/internal/clients/naver"
)

// Scraper is the slice of the Naver client the market module uses.
type Scraper interface {
	GetMoneyFlow() ([]naver.FlowRow, error)
	GetThemeList() ([]naver.Theme, error)
	GetThemeTopStocks(themeURL string) ([]naver.ThemeStock, error)
}

// FlowSnapshot is the dashboard's money-flow block.
type FlowSnapshot struct {
	Rows      []naver.FlowRow `json:"rows"`
	Insight   string          `json:"insight"`
	UpdatedAt time.Time       `json:"updated_at"`
	Mock      bool            `json:"mock"`
}

// ThemeDetail is one theme page with its leading stocks and diagnosis.
type ThemeDetail struct {
	Theme    naver.Theme        `json:"theme"`
	Stocks   []naver.ThemeStock `json:"stocks"`
	Scenario Scenario           `json:"scenario"`
}

// Scenario is the rate-based theme diagnosis.
type Scenario struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Service refreshes and serves market snapshots.
type Service struct {
	scraper   Scraper
	snapshots *cache.SnapshotStore
	log       zerolog.Logger
}

// NewService creates a new market service
func NewService(scraper Scraper, snapshots *cache.SnapshotStore, log zerolog.Logger) *Service {
	return &Service{
		scraper:   scraper,
		snapshots: snapshots,
		log:       log.With().Str("service", "market").Logger(),
	}
}

// Refresh scrapes the money-flow and theme snapshots into the cache. Scrape
// failures keep the previous snapshot; they never propagate to readers.
func (s *Service) Refresh() error {
	var firstErr error

	flows, err := s.scraper.GetMoneyFlow()
	if err != nil {
		s.log.Warn().Err(err).Msg("Money flow scrape failed, keeping previous snapshot")
		firstErr = err
	} else if err := s.snapshots.Set(cache.SnapshotMoneyFlow, flows); err != nil {
		firstErr = err
	}

	themes, err := s.scraper.GetThemeList()
	if err != nil {
		s.log.Warn().Err(err).Msg("Theme scrape failed, keeping previous snapshot")
		if firstErr == nil {
			firstErr = err
		}
	} else if err := s.snapshots.Set(cache.SnapshotThemes, themes); err != nil {
		if firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// MoneyFlow returns the cached money-flow snapshot, falling back to a fixed
// mock when nothing has ever been scraped.
func (s *Service) MoneyFlow() *FlowSnapshot {
	var rows []naver.FlowRow
	updatedAt, ok := s.snapshots.Get(cache.SnapshotMoneyFlow, &rows)
	if !ok || len(rows) == 0 {
		rows = mockFlowRows()
		return &FlowSnapshot{Rows: rows, Insight: flowInsight(rows[0]), UpdatedAt: time.Now(), Mock: true}
	}
	return &FlowSnapshot{Rows: rows, Insight: flowInsight(rows[0]), UpdatedAt: updatedAt}
}

// Themes returns the cached theme ranking, or the mock list.
func (s *Service) Themes() ([]naver.Theme, bool) {
	var themes []naver.Theme
	if _, ok := s.snapshots.Get(cache.SnapshotThemes, &themes); ok && len(themes) > 0 {
		return themes, false
	}
	return mockThemes(), true
}

// ThemeDetail loads the leading stocks for one cached theme by name.
func (s *Service) ThemeDetail(name string) (*ThemeDetail, error) {
	themes, _ := s.Themes()
	for _, theme := range themes {
		if theme.Name != name {
			continue
		}
		detail := &ThemeDetail{Theme: theme, Scenario: themeScenario(theme.ChangeRate)}
		if theme.Link != "" {
			stocks, err := s.scraper.GetThemeTopStocks(theme.Link)
			if err != nil {
				s.log.Warn().Err(err).Str("theme", name).Msg("Theme detail scrape failed")
			} else {
				detail.Stocks = stocks
			}
		}
		return detail, nil
	}
	return nil, fmt.Errorf("theme %q not found", name)
}

// flowInsight renders the one-line diagnosis from the latest flow row.
func flowInsight(last naver.FlowRow) string {
	switch {
	case last.Foreign > 0 && last.Institutional > 0:
		return fmt.Sprintf("최근 영업일 기준 외국인(%d억)과 기관(%d억)이 양매수를 기록하며 우호적인 시장 환경이 조성되었습니다.",
			last.Foreign, last.Institutional)
	case last.Foreign > 0:
		return fmt.Sprintf("기관은 매도 우위이나, 외국인이 %d억 원 순매수하며 지수를 방어하고 있습니다.", last.Foreign)
	case last.Institutional > 0:
		return fmt.Sprintf("외국인은 매도 우위이나, 기관이 %d억 원 순매수하며 시장을 이끌고 있습니다.", last.Institutional)
	default:
		return "현재 기관과 외국인 모두 양매도를 기록 중입니다. 수급 보수적 접근이 필요합니다."
	}
}

// themeScenario maps a theme's daily change rate to a diagnosis.
func themeScenario(rate float64) Scenario {
	switch {
	case rate > 3.0:
		return Scenario{
			Title:       "📈 매우 강한 자금 유입",
			Description: "현재 시장 주도 테마로 선정되었습니다. 대장주를 중심으로 한 짧은 단기 트레이딩 접근이 유효할 수 있습니다.",
		}
	case rate > 0:
		return Scenario{
			Title:       "⚖️ 완만한 상승세",
			Description: "조용히 우상향 중인 테마입니다. 향후 모멘텀(뉴스/정책) 발생 시 추가 슈팅의 가능성이 있습니다.",
		}
	default:
		return Scenario{
			Title:       "📉 조정 중 (눌림목)",
			Description: "현재 매수세가 약화되었습니다. 단기 급락 후 계절적 반등을 노리는 중기 관점의 분할 매수 모니터링이 필요합니다.",
		}
	}
}

func mockFlowRows() []naver.FlowRow {
	today := time.Now().Format("2006-01-02")
	return []naver.FlowRow{
		{Date: today, Retail: -1500, Foreign: 2000, Institutional: -500},
		{Date: "2026-02-20", Retail: 500, Foreign: -800, Institutional: 300},
		{Date: "2026-02-19", Retail: -200, Foreign: 1200, Institutional: -1000},
		{Date: "2026-02-18", Retail: 1800, Foreign: -1500, Institutional: -300},
		{Date: "2026-02-17", Retail: 100, Foreign: 500, Institutional: -600},
	}
}

func mockThemes() []naver.Theme {
	return []naver.Theme{
		{Name: "AI 반도체", ChangeRate: 4.2},
		{Name: "2차전지", ChangeRate: 1.1},
		{Name: "바이오", ChangeRate: -0.8},
	}
}

// Seasonality returns the per-sector monthly win-rate table (percent, Jan to
// Dec). Served as fixed reference data.
func Seasonality() map[string][12]int {
	return map[string][12]int{
		"반도체":   {60, 50, 40, 70, 55, 45, 65, 80, 50, 60, 70, 85},
		"2차전지":  {70, 60, 50, 45, 80, 75, 55, 60, 45, 50, 65, 90},
		"바이오":   {40, 45, 55, 60, 50, 65, 70, 45, 80, 75, 60, 55},
		"금융":    {55, 60, 70, 80, 75, 65, 50, 45, 40, 50, 60, 65},
		"자동차":   {50, 55, 65, 70, 60, 50, 45, 55, 65, 80, 75, 70},
		"게임/엔터": {45, 50, 55, 60, 70, 80, 85, 75, 65, 55, 50, 45},
	}
}
