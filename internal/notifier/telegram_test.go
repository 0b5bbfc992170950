package notifier

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendPostsToBotEndpoint(t *testing.T) {
	var gotPath string
	var gotBody map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer srv.Close()

	n := NewTelegram("tok-abc", "12345", zerolog.Nop())
	n.baseURL = srv.URL

	require.NoError(t, n.Send("target hit: 005930 above 80000"))
	assert.Equal(t, "/bottok-abc/sendMessage", gotPath)
	assert.Equal(t, "12345", gotBody["chat_id"])
	assert.Equal(t, "target hit: 005930 above 80000", gotBody["text"])
}

func TestSendSurfacesAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false,"description":"chat not found"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	n := NewTelegram("tok-abc", "12345", zerolog.Nop())
	n.baseURL = srv.URL

	err := n.Send("hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestSendWithoutTokenIsNoOp(t *testing.T) {
	n := NewTelegram("", "", zerolog.Nop())
	assert.False(t, n.Enabled())
	assert.NoError(t, n.Send("dropped"))
}
