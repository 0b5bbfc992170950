// Package notifier sends alert messages via the Telegram Bot API.
package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const defaultAPIBaseURL = "https://api.telegram.org"

// Telegram sends messages to one configured chat. Sends are single-attempt;
// a failed delivery is logged by the caller and the alert stays armed.
type Telegram struct {
	baseURL  string
	botToken string
	chatID   string
	client   *http.Client
	log      zerolog.Logger
}

// NewTelegram creates a Telegram notifier. An empty token disables delivery;
// Send then logs the message and reports success so callers need no special
// casing in development.
func NewTelegram(botToken, chatID string, log zerolog.Logger) *Telegram {
	return &Telegram{
		baseURL:  defaultAPIBaseURL,
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: 10 * time.Second},
		log:      log.With().Str("notifier", "telegram").Logger(),
	}
}

// Enabled reports whether a bot token and chat are configured.
func (t *Telegram) Enabled() bool {
	return t.botToken != "" && t.chatID != ""
}

// Send delivers one message to the configured chat.
// Implements domain.Notifier.
func (t *Telegram) Send(text string) error {
	if !t.Enabled() {
		t.log.Info().Str("text", text).Msg("Telegram not configured, skipping delivery")
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"chat_id":    t.chatID,
		"text":       text,
		"parse_mode": "HTML",
	})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	apiURL := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.botToken)
	resp, err := t.client.Post(apiURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
