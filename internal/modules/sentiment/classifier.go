// Package sentiment classifies Korean news headlines with keyword lists.
package sentiment

import (
	"math"
	"strings"
)

// Labels assigned to headlines.
const (
	Positive = "positive"
	Negative = "negative"
	Neutral  = "neutral"
)

var positiveKeywords = []string{
	"상승", "급등", "돌파", "흑자", "수주", "호조", "MOU", "강세",
	"체결", "최대", "신고가", "성장", "기대", "수혜", "반등",
}

var negativeKeywords = []string{
	"하락", "급락", "적자", "우려", "수사", "악재", "약세",
	"신저가", "미달", "쇼크", "매도", "불안", "위기", "리스크",
}

// Headline is one classified news title.
type Headline struct {
	Title     string `json:"title"`
	Sentiment string `json:"sentiment"`
}

// Summary aggregates headline sentiment for one ticker.
type Summary struct {
	Total         int        `json:"total"`
	PositiveRatio int        `json:"positive_ratio"`
	NegativeRatio int        `json:"negative_ratio"`
	NeutralRatio  int        `json:"neutral_ratio"`
	PositiveCount int        `json:"pos_count"`
	NegativeCount int        `json:"neg_count"`
	NeutralCount  int        `json:"neutral_count"`
	Headlines     []Headline `json:"news_list"`
}

// Classify labels one headline. A title hitting both keyword lists is
// neutral, same as hitting neither.
func Classify(title string) string {
	pos := containsAny(title, positiveKeywords)
	neg := containsAny(title, negativeKeywords)
	switch {
	case pos && !neg:
		return Positive
	case neg && !pos:
		return Negative
	default:
		return Neutral
	}
}

// Analyze classifies a batch of headlines into a summary.
// Returns nil when there are no headlines.
func Analyze(titles []string) *Summary {
	if len(titles) == 0 {
		return nil
	}

	s := &Summary{Total: len(titles), Headlines: make([]Headline, 0, len(titles))}
	for _, title := range titles {
		label := Classify(title)
		switch label {
		case Positive:
			s.PositiveCount++
		case Negative:
			s.NegativeCount++
		default:
			s.NeutralCount++
		}
		s.Headlines = append(s.Headlines, Headline{Title: title, Sentiment: label})
	}

	s.PositiveRatio = ratio(s.PositiveCount, s.Total)
	s.NegativeRatio = ratio(s.NegativeCount, s.Total)
	s.NeutralRatio = ratio(s.NeutralCount, s.Total)
	return s
}

func ratio(count, total int) int {
	return int(math.Round(float64(count) / float64(total) * 100))
}

func containsAny(title string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(title, kw) {
			return true
		}
	}
	return false
}
