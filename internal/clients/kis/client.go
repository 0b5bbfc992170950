// Package kis implements the Korea Investment & Securities OpenAPI quote
// client. It is the preferred realtime price source; when credentials are
// missing or the API misbehaves the caller moves on to the next source.
package kis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/trendlotto/invest/internal/domain"
)

const (
	defaultBaseURL = "https://openapi.koreainvestment.com:9443"

	// trIDCurrentPrice is the transaction ID for the domestic stock
	// current-price inquiry.
	trIDCurrentPrice = "FHKST01010100"
)

// ErrNoCredentials is returned when the client has no app key/secret
// configured. Callers treat it like any other source failure.
var ErrNoCredentials = fmt.Errorf("kis credentials not configured")

// Client talks to the KIS OpenAPI with a cached OAuth token.
type Client struct {
	baseURL   string
	appKey    string
	appSecret string
	client    *http.Client
	log       zerolog.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient creates a KIS client. Empty credentials are allowed; every call
// will then fail with ErrNoCredentials so the fallback chain takes over.
func NewClient(appKey, appSecret string, log zerolog.Logger) *Client {
	return &Client{
		baseURL:   defaultBaseURL,
		appKey:    appKey,
		appSecret: appSecret,
		client:    &http.Client{Timeout: 5 * time.Second},
		log:       log.With().Str("client", "kis").Logger(),
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// ensureToken fetches an OAuth token if the cached one is missing or stale.
// Tokens are valid for roughly 24h; refresh an hour early.
func (c *Client) ensureToken() (string, error) {
	if c.appKey == "" || c.appSecret == "" {
		return "", ErrNoCredentials
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	payload, err := json.Marshal(map[string]string{
		"grant_type": "client_credentials",
		"appkey":     c.appKey,
		"appsecret":  c.appSecret,
	})
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}

	resp, err := c.client.Post(c.baseURL+"/oauth2/tokenP", "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return "", fmt.Errorf("failed to parse token response: %w", err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token")
	}

	c.accessToken = token.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn)*time.Second - time.Hour)
	c.log.Debug().Time("expires", c.tokenExpiry).Msg("Refreshed KIS access token")

	return c.accessToken, nil
}

type priceResponse struct {
	RtCd   string `json:"rt_cd"`
	Msg    string `json:"msg1"`
	Output struct {
		CurrentPrice string `json:"stck_prpr"`
	} `json:"output"`
}

// GetQuote fetches the current price for a KRX ticker.
// Implements domain.PriceSource.
func (c *Client) GetQuote(ticker string) (*domain.Quote, error) {
	token, err := c.ensureToken()
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/uapi/domestic-stock/v1/quotations/inquire-price?FID_COND_MRKT_DIV_CODE=J&FID_INPUT_ISCD=%s",
		c.baseURL, ticker)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build quote request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("appkey", c.appKey)
	req.Header.Set("appsecret", c.appSecret)
	req.Header.Set("tr_id", trIDCurrentPrice)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quote request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote request returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read quote response: %w", err)
	}

	var priceResp priceResponse
	if err := json.Unmarshal(body, &priceResp); err != nil {
		return nil, fmt.Errorf("failed to parse quote response: %w", err)
	}
	if priceResp.RtCd != "0" {
		return nil, fmt.Errorf("quote rejected for %s: %s", ticker, priceResp.Msg)
	}

	price, err := strconv.ParseFloat(priceResp.Output.CurrentPrice, 64)
	if err != nil {
		return nil, fmt.Errorf("unparseable price %q for %s: %w", priceResp.Output.CurrentPrice, ticker, err)
	}

	return &domain.Quote{
		Ticker: ticker,
		Price:  price,
		Time:   time.Now(),
		Source: c.Name(),
	}, nil
}

// Name identifies this price source in logs and quote records.
func (c *Client) Name() string {
	return "kis"
}
