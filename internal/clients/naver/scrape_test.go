package naver

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(zerolog.Nop())
	c.pageBaseURL = srv.URL
	c.mobileBaseURL = srv.URL
	c.chartBaseURL = srv.URL
	return c
}

const flowPage = `<html><body><table>
<tr><th>date</th><th>retail</th><th>foreign</th><th>inst</th></tr>
<tr><td>2026.08.28</td><td>-1,500</td><td>+2,000</td><td>-500</td></tr>
<tr><td>2026.08.27</td><td>500</td><td>-800</td><td>300</td></tr>
<tr><td>summary</td><td>n/a</td><td>n/a</td><td>n/a</td></tr>
</table></body></html>`

func TestGetMoneyFlowParsesRows(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, flowPage)
	}))

	flows, err := c.GetMoneyFlow()
	require.NoError(t, err)
	require.Len(t, flows, 2)
	assert.Equal(t, "2026.08.28", flows[0].Date)
	assert.Equal(t, int64(-1500), flows[0].Retail)
	assert.Equal(t, int64(2000), flows[0].Foreign)
	assert.Equal(t, int64(-500), flows[0].Institutional)
}

func TestGetMoneyFlowStructureChanged(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body><div>redesigned page</div></body></html>")
	}))

	_, err := c.GetMoneyFlow()
	assert.Error(t, err)
}

const themePage = `<html><body><table class="type_1 theme">
<tr><td class="col_type1"><a href="/sise/sise_group_detail.naver?no=1">AI Semis</a></td><td class="col_type2">+3.42%</td></tr>
<tr><td class="col_type1"><a href="/sise/sise_group_detail.naver?no=2">Batteries</a></td><td class="col_type2">-1.10%</td></tr>
</table></body></html>`

func TestGetThemeListParsesTable(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, themePage)
	}))

	themes, err := c.GetThemeList()
	require.NoError(t, err)
	require.Len(t, themes, 2)
	assert.Equal(t, "AI Semis", themes[0].Name)
	assert.InDelta(t, 3.42, themes[0].ChangeRate, 1e-9)
	assert.Contains(t, themes[0].Link, "/sise/sise_group_detail.naver?no=1")
	assert.InDelta(t, -1.10, themes[1].ChangeRate, 1e-9)
}

func TestGetDailyCandlesParsesSiseJSON(t *testing.T) {
	now := time.Now()
	d := func(daysAgo int) string { return now.AddDate(0, 0, -daysAgo).Format("20060102") }
	payload := fmt.Sprintf(`[['date','open','high','low','close','volume','ratio'],
["%s", 70000, 71000, 69500, 70500, 1200000, 51.2],
["%s", 70500, 72000, 70400, 71800, 1350000, 51.3],
["%s", 71800, 72500, 71000, 71500, 1100000, 51.1]]`, d(2), d(1), d(0))

	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, payload)
	}))

	candles, err := c.GetDailyCandles("005930", now.AddDate(0, 0, -5), now)
	require.NoError(t, err)
	require.Len(t, candles, 3)
	assert.Equal(t, 70500.0, candles[0].Close)
	assert.Equal(t, 71500.0, candles[2].Close)

	q, err := c.GetQuote("005930")
	require.NoError(t, err)
	assert.Equal(t, 71500.0, q.Price)
	assert.Equal(t, "naver", q.Source)
}

func TestGetFundamentalsParsesAnnualTable(t *testing.T) {
	payload := `{"financeInfo": {
		"trTitleList": [{"title":"2024","key":"y1"},{"title":"2025","key":"y2"}],
		"rowList": [
			{"title":"revenue","columns":{"y1":{"value":"300"},"y2":{"value":"320"}}},
			{"title":"op","columns":{"y1":{"value":"40"},"y2":{"value":"45"}}}
		]}}`

	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, payload)
	}))

	f, err := c.GetFundamentals("005930")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024", "2025"}, f.Headers)
	assert.Equal(t, []string{"300", "320"}, f.Rows["revenue"])
	assert.Equal(t, []string{"40", "45"}, f.Rows["operating_profit"])
}

func TestGetNewsHeadlinesUnescapes(t *testing.T) {
	payload := `[{"items":[{"title":"&quot;record&quot; quarter"},{"title":"chip &amp; battery rally"}]}]`

	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, payload)
	}))

	headlines, err := c.GetNewsHeadlines("005930")
	require.NoError(t, err)
	require.Len(t, headlines, 2)
	assert.Equal(t, `"record" quarter`, headlines[0])
	assert.Equal(t, "chip & battery rally", headlines[1])
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return parsed
}
