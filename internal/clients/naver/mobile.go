package naver

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Fundamentals is the annual financial summary table for one ticker.
type Fundamentals struct {
	Headers []string            `json:"headers"`
	Rows    map[string][]string `json:"rows"`
}

// fundamentalRowTitles maps row indices of the annual finance payload to the
// metrics the review page shows.
var fundamentalRowTitles = map[int]string{
	0:  "revenue",
	1:  "operating_profit",
	2:  "net_income",
	7:  "roe",
	8:  "debt_ratio",
	12: "per",
	14: "pbr",
}

type financeInfoPayload struct {
	FinanceInfo struct {
		TrTitleList []struct {
			Title string `json:"title"`
			Key   string `json:"key"`
		} `json:"trTitleList"`
		RowList []struct {
			Title   string `json:"title"`
			Columns map[string]struct {
				Value string `json:"value"`
			} `json:"columns"`
		} `json:"rowList"`
	} `json:"financeInfo"`
}

// GetFundamentals fetches the annual finance summary from the mobile JSON API.
func (c *Client) GetFundamentals(ticker string) (*Fundamentals, error) {
	url := fmt.Sprintf("%s/api/stock/%s/finance/annual", c.mobileBaseURL, ticker)

	body, err := c.get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fundamentals for %s: %w", ticker, err)
	}

	var payload financeInfoPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse fundamentals for %s: %w", ticker, err)
	}

	info := payload.FinanceInfo
	if len(info.TrTitleList) == 0 || len(info.RowList) == 0 {
		return nil, fmt.Errorf("empty fundamentals payload for %s", ticker)
	}

	result := &Fundamentals{
		Headers: make([]string, 0, len(info.TrTitleList)),
		Rows:    make(map[string][]string),
	}
	keys := make([]string, 0, len(info.TrTitleList))
	for _, t := range info.TrTitleList {
		result.Headers = append(result.Headers, t.Title)
		keys = append(keys, t.Key)
	}

	for idx, name := range fundamentalRowTitles {
		if idx >= len(info.RowList) {
			continue
		}
		row := info.RowList[idx]
		values := make([]string, 0, len(keys))
		for _, key := range keys {
			if col, ok := row.Columns[key]; ok {
				values = append(values, col.Value)
			} else {
				values = append(values, "-")
			}
		}
		result.Rows[name] = values
	}

	return result, nil
}

type newsPayload []struct {
	Items []struct {
		Title string `json:"title"`
	} `json:"items"`
}

// GetNewsHeadlines fetches up to 15 recent news headlines for a ticker.
func (c *Client) GetNewsHeadlines(ticker string) ([]string, error) {
	url := fmt.Sprintf("%s/api/news/stock/%s?pageSize=15", c.mobileBaseURL, ticker)

	body, err := c.get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch news for %s: %w", ticker, err)
	}

	var payload newsPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse news for %s: %w", ticker, err)
	}

	var headlines []string
	for _, group := range payload {
		for _, item := range group.Items {
			title := unescapeTitle(item.Title)
			if title == "" {
				continue
			}
			headlines = append(headlines, title)
			if len(headlines) >= 15 {
				return headlines, nil
			}
		}
	}
	return headlines, nil
}

func unescapeTitle(title string) string {
	r := strings.NewReplacer("&quot;", `"`, "&lt;", "<", "&gt;", ">", "&amp;", "&")
	return strings.TrimSpace(r.Replace(title))
}
