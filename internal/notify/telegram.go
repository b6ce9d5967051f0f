package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"
)

const telegramAPI = "https://api.telegram.org"

type Telegram struct {
	Token   string
	ChatID  int64
	BaseURL string // defaults to the public Bot API
	Client  *http.Client
}

func NewTelegram(token string, chatID int64) *Telegram {
	if token == "" || chatID == 0 {
		return nil
	}
	return &Telegram{
		Token:   token,
		ChatID:  chatID,
		BaseURL: telegramAPI,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type telegramPayload struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

// Send posts "<b>title</b>\n\ntext" with HTML parse mode. Both parts are
// escaped; service names and probe errors are not trusted markup.
func (t *Telegram) Send(ctx context.Context, title, text string) error {
	if t == nil || t.Token == "" {
		return errors.New("telegram disabled")
	}
	body, err := json.Marshal(telegramPayload{
		ChatID:    t.ChatID,
		Text:      "<b>" + html.EscapeString(title) + "</b>\n\n" + html.EscapeString(text),
		ParseMode: "HTML",
	})
	if err != nil {
		return fmt.Errorf("telegram payload: %w", err)
	}

	base := strings.TrimRight(t.BaseURL, "/")
	if base == "" {
		base = telegramAPI
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/bot"+t.Token+"/sendMessage", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		// the URL embeds the bot token; keep it out of logs
		return fmt.Errorf("telegram send: %w", redact(err, t.Token))
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram API error: %s - %s", resp.Status, strings.TrimSpace(string(msg)))
	}
	return nil
}

type redacted struct {
	msg string
	err error
}

func (r redacted) Error() string { return r.msg }
func (r redacted) Unwrap() error { return r.err }

func redact(err error, secret string) error {
	return redacted{msg: strings.ReplaceAll(err.Error(), secret, "***"), err: err}
}
