package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/phuslu/log"
)

const telegramAPI = "https://api.telegram.org"

// TelegramNotifier sends messages via the Telegram Bot API.
type TelegramNotifier struct {
	BotToken string
	ChatID   string
	Client   *http.Client
	APIBase  string
}

// NewTelegramNotifier creates a notifier with optional proxy support.
func NewTelegramNotifier(botToken, chatID, proxyURL string) *TelegramNotifier {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &TelegramNotifier{
		BotToken: botToken,
		ChatID:   chatID,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		APIBase: telegramAPI,
	}
}

func (t *TelegramNotifier) endpoint(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", t.APIBase, t.BotToken, method)
}

// maxMessageLen is the Bot API limit on a message text, in characters.
const maxMessageLen = 4096

// sendMessage is the sendMessage request body. Digests are HTML and quote
// no links worth a preview.
type sendMessage struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// APIError is a failed Bot API call. RetryAfter is set when Telegram asks
// the client to slow down.
type APIError struct {
	Status      int
	Description string
	RetryAfter  time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram API error: status %d, body: %s", e.Status, e.Description)
}

// Send sends text to the configured chat.
func (t *TelegramNotifier) Send(text string) error {
	return t.SendContext(context.Background(), text)
}

// SendContext sends text to the configured chat, split into several
// messages on line boundaries when it exceeds the Bot API limit.
func (t *TelegramNotifier) SendContext(ctx context.Context, text string) error {
	for _, chunk := range splitMessage(text, maxMessageLen) {
		if err := t.sendOne(ctx, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (t *TelegramNotifier) sendOne(ctx context.Context, text string) error {
	body, err := json.Marshal(sendMessage{
		ChatID:                t.ChatID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint("sendMessage"), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		return nil
	}

	respBody, _ := io.ReadAll(resp.Body)
	apiErr := &APIError{Status: resp.StatusCode, Description: string(respBody)}
	var reply struct {
		Description string `json:"description"`
		Parameters  struct {
			RetryAfter int `json:"retry_after"`
		} `json:"parameters"`
	}
	if json.Unmarshal(respBody, &reply) == nil {
		if reply.Description != "" {
			apiErr.Description = reply.Description
		}
		apiErr.RetryAfter = time.Duration(reply.Parameters.RetryAfter) * time.Second
	}
	return apiErr
}

// splitMessage cuts text into chunks of at most limit characters, breaking
// after a newline when possible so HTML tags stay within one chunk.
func splitMessage(text string, limit int) []string {
	runes := []rune(text)
	var chunks []string
	for len(runes) > limit {
		cut := limit
		for i := limit; i > 0; i-- {
			if runes[i-1] == '\n' {
				cut = i
				break
			}
		}
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 || len(chunks) == 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}

// SendWithRetry sends a message with exponential backoff retry, waiting
// longer when Telegram asks for it.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, text string, maxRetries int) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if err := t.SendContext(ctx, text); err != nil {
			lastErr = err
			if i == maxRetries || ctx.Err() != nil {
				break
			}
			backoff := time.Duration(1<<uint(i)) * time.Second
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.RetryAfter > backoff {
				backoff = apiErr.RetryAfter
			}
			log.Warn().Int("attempt", i+1).Int("max", maxRetries+1).Err(err).
				Dur("backoff", backoff).Msg("telegram send failed, retrying")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				continue
			}
		}
		return nil
	}
	return fmt.Errorf("all %d retries exhausted: %w", maxRetries+1, lastErr)
}
