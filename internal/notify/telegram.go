// Package notify pushes best-effort Telegram messages for absence-type
// submissions. A failed send is logged and lost; nothing retries it.
package notify

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var sendsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "absensi_notifications_total",
	Help: "Telegram notification attempts by result.",
}, []string{"result"})

// Notifier is the send contract the submission path depends on.
type Notifier interface {
	Send(ctx context.Context, text string) bool
}

// Telegram posts messages to a chat via the bot API.
type Telegram struct {
	BaseURL string
	HTTP    *http.Client

	token  string
	chatID string
}

// NewTelegram creates a client. Token or chat id may be empty, in which
// case every Send reports false without touching the network.
func NewTelegram(token, chatID string) *Telegram {
	return &Telegram{
		BaseURL: "https://api.telegram.org",
		HTTP:    &http.Client{Timeout: 5 * time.Second},
		token:   token,
		chatID:  chatID,
	}
}

// Send pushes one message. Returns true only when the API accepted it.
func (t *Telegram) Send(ctx context.Context, text string) bool {
	ok := t.send(ctx, text)
	if ok {
		sendsTotal.WithLabelValues("sent").Inc()
	} else {
		sendsTotal.WithLabelValues("failed").Inc()
	}
	return ok
}

func (t *Telegram) send(ctx context.Context, text string) bool {
	if t.token == "" || t.chatID == "" {
		return false
	}

	form := url.Values{}
	form.Set("chat_id", t.chatID)
	form.Set("text", text)

	endpoint := t.BaseURL + "/bot" + t.token + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		log.Printf("telegram request build failed: %v", err)
		return false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.HTTP.Do(req)
	if err != nil {
		log.Printf("telegram send failed: %v", err)
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Printf("telegram send rejected: status %d", resp.StatusCode)
		return false
	}
	return true
}
