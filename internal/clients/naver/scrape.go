package naver

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// FlowRow is one day of investor net-buy figures (units: 100M KRW).
type FlowRow struct {
	Date          string `json:"date" msgpack:"date"`
	Retail        int64  `json:"retail" msgpack:"retail"`
	Foreign       int64  `json:"foreign" msgpack:"foreign"`
	Institutional int64  `json:"institutional" msgpack:"institutional"`
}

// Theme is one entry of the theme ranking table.
type Theme struct {
	Name       string  `json:"name" msgpack:"name"`
	ChangeRate float64 `json:"change_rate" msgpack:"change_rate"`
	Link       string  `json:"link" msgpack:"link"`
}

// ThemeStock is one leading stock within a theme page.
type ThemeStock struct {
	Name       string `json:"name" msgpack:"name"`
	Price      string `json:"price" msgpack:"price"`
	ChangeRate string `json:"change_rate" msgpack:"change_rate"`
}

// GetMoneyFlow scrapes the investor trading-trend table from the domestic
// market page. Returns newest-first rows.
func (c *Client) GetMoneyFlow() ([]FlowRow, error) {
	body, err := c.get(c.pageBaseURL + "/sise/sise_trans_style.naver")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch money flow page: %w", err)
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse money flow page: %w", err)
	}

	var flows []FlowRow
	for _, tr := range findAll(doc, matchTag("tr")) {
		cells := textCells(tr)
		// Expected layout: date, retail, foreign, institutional, ...
		if len(cells) < 4 || !looksLikeDate(cells[0]) {
			continue
		}
		retail, err1 := parseSignedNumber(cells[1])
		foreign, err2 := parseSignedNumber(cells[2])
		institutional, err3 := parseSignedNumber(cells[3])
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}

		flows = append(flows, FlowRow{
			Date:          cells[0],
			Retail:        retail,
			Foreign:       foreign,
			Institutional: institutional,
		})
		if len(flows) >= 5 {
			break
		}
	}

	if len(flows) == 0 {
		return nil, fmt.Errorf("no investor flow rows found (page structure changed?)")
	}
	return flows, nil
}

// GetThemeList scrapes the theme ranking table, capped at 20 entries.
func (c *Client) GetThemeList() ([]Theme, error) {
	body, err := c.get(c.pageBaseURL + "/sise/theme.naver")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch theme page: %w", err)
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse theme page: %w", err)
	}

	table := find(doc, matchClass("table", "theme"))
	if table == nil {
		return nil, fmt.Errorf("theme table not found (page structure changed?)")
	}

	var themes []Theme
	for _, tr := range findAll(table, matchTag("tr")) {
		nameCell := find(tr, matchClass("td", "col_type1"))
		rateCell := find(tr, matchClass("td", "col_type2"))
		if nameCell == nil || rateCell == nil {
			continue
		}
		anchor := find(nameCell, matchTag("a"))
		if anchor == nil {
			continue
		}

		rateText := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text(rateCell)), "%"))
		rate, err := strconv.ParseFloat(strings.TrimPrefix(rateText, "+"), 64)
		if err != nil {
			continue
		}

		themes = append(themes, Theme{
			Name:       strings.TrimSpace(text(anchor)),
			ChangeRate: rate,
			Link:       c.pageBaseURL + attr(anchor, "href"),
		})
		if len(themes) >= 20 {
			break
		}
	}

	if len(themes) == 0 {
		return nil, fmt.Errorf("no themes found (page structure changed?)")
	}
	return themes, nil
}

// GetThemeTopStocks scrapes up to five leading stocks from a theme page.
func (c *Client) GetThemeTopStocks(themeURL string) ([]ThemeStock, error) {
	body, err := c.get(themeURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch theme detail: %w", err)
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse theme detail: %w", err)
	}

	var stocks []ThemeStock
	for _, tr := range findAll(doc, matchTag("tr")) {
		nameCell := find(tr, matchClass("td", "name"))
		if nameCell == nil {
			continue
		}
		numbers := findAll(tr, matchClass("td", "number"))
		if len(numbers) < 3 {
			continue
		}

		stocks = append(stocks, ThemeStock{
			Name:       strings.TrimSpace(text(nameCell)),
			Price:      strings.TrimSpace(text(numbers[0])),
			ChangeRate: strings.TrimSpace(text(numbers[2])),
		})
		if len(stocks) >= 5 {
			break
		}
	}

	if len(stocks) == 0 {
		return nil, fmt.Errorf("no theme stocks found")
	}
	return stocks, nil
}

// --- html helpers ---

type nodeMatcher func(*html.Node) bool

func matchTag(tag string) nodeMatcher {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == tag
	}
}

func matchClass(tag, class string) nodeMatcher {
	return func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.Data != tag {
			return false
		}
		for _, a := range n.Attr {
			if a.Key == "class" {
				for _, c := range strings.Fields(a.Val) {
					if c == class {
						return true
					}
				}
			}
		}
		return false
	}
}

func find(n *html.Node, match nodeMatcher) *html.Node {
	if match(n) {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := find(child, match); found != nil {
			return found
		}
	}
	return nil
}

func findAll(n *html.Node, match nodeMatcher) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if match(n) {
			out = append(out, n)
			return // do not descend into matches
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return out
}

func text(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return sb.String()
}

func textCells(tr *html.Node) []string {
	var cells []string
	for _, td := range findAll(tr, matchTag("td")) {
		cells = append(cells, strings.TrimSpace(text(td)))
	}
	return cells
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func looksLikeDate(s string) bool {
	// Accepts "2026.08.28" and "2026-08-28" style cells
	if len(s) < 8 {
		return false
	}
	digits := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.' || r == '-' || r == '/':
		default:
			return false
		}
	}
	return digits >= 6
}

func parseSignedNumber(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	s = strings.TrimPrefix(s, "+")
	return strconv.ParseInt(s, 10, 64)
}
