package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/trendlotto/invest/internal/domain"
)

// TTLQuote bounds how long a cached quote may serve reads.
const TTLQuote = 10 * time.Minute

// QuoteCache is a short-TTL persistent cache for latest-price lookups.
// It follows a cache-first pattern: fresh hits skip the upstream call, and
// stale entries remain available as a last-resort fallback when every
// upstream source fails.
type QuoteCache struct {
	db *sql.DB
}

// NewQuoteCache creates a quote cache over cache.db.
func NewQuoteCache(db *sql.DB) *QuoteCache {
	return &QuoteCache{db: db}
}

// Store saves a quote with expiration = now + TTLQuote.
func (c *QuoteCache) Store(q *domain.Quote) error {
	data, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("failed to marshal quote: %w", err)
	}

	expiresAt := time.Now().Add(TTLQuote).Unix()
	_, err = c.db.Exec(
		"INSERT OR REPLACE INTO quotes (ticker, data, expires_at) VALUES (?, ?, ?)",
		q.Ticker, string(data), expiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store quote for %s: %w", q.Ticker, err)
	}
	return nil
}

// GetIfFresh returns the cached quote only if it has not expired.
// Returns nil, nil on a miss or an expired entry.
func (c *QuoteCache) GetIfFresh(ticker string) (*domain.Quote, error) {
	return c.get(ticker, true)
}

// Get returns the cached quote regardless of freshness.
// Use as a fallback when upstream sources fail (stale data > no data).
func (c *QuoteCache) Get(ticker string) (*domain.Quote, error) {
	return c.get(ticker, false)
}

func (c *QuoteCache) get(ticker string, freshOnly bool) (*domain.Quote, error) {
	query := "SELECT data FROM quotes WHERE ticker = ?"
	args := []interface{}{ticker}
	if freshOnly {
		query += " AND expires_at > ?"
		args = append(args, time.Now().Unix())
	}

	var data string
	err := c.db.QueryRow(query, args...).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read quote for %s: %w", ticker, err)
	}

	var q domain.Quote
	if err := json.Unmarshal([]byte(data), &q); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached quote for %s: %w", ticker, err)
	}
	return &q, nil
}
