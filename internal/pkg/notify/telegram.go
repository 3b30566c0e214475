package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"hashop_store/internal/pkg/config"

	"go.uber.org/zap"
)

// TelegramClient sends messages through the Telegram Bot API to one or more
// operator chats.
type TelegramClient struct {
	botToken string
	chatIDs  []string
	apiURL   string
	http     *http.Client
	log      *zap.Logger
}

func NewTelegramClient(cfg config.TelegramConfig, log *zap.Logger) *TelegramClient {
	return &TelegramClient{
		botToken: cfg.BotToken,
		chatIDs:  cfg.TelegramChatIDs(),
		apiURL:   "https://api.telegram.org/bot" + cfg.BotToken,
		http:     &http.Client{Timeout: 10 * time.Second},
		log:      log,
	}
}

// Configured reports whether a bot token and at least one chat are set.
func (t *TelegramClient) Configured() bool {
	return t.botToken != "" && t.botToken != "your-telegram-bot-token" && len(t.chatIDs) > 0
}

// SendMessage posts an HTML-formatted message to every configured chat.
// Returns the last error; partial delivery is acceptable.
func (t *TelegramClient) SendMessage(ctx context.Context, text string) error {
	if !t.Configured() {
		t.log.Debug("telegram not configured, dropping message")
		return nil
	}

	var lastErr error
	for _, chatID := range t.chatIDs {
		if err := t.sendOne(ctx, chatID, text); err != nil {
			t.log.Warn("telegram send failed",
				zap.String("chat_id", chatID),
				zap.Error(err))
			lastErr = err
		}
	}
	return lastErr
}

func (t *TelegramClient) sendOne(ctx context.Context, chatID, text string) error {
	payload, err := json.Marshal(map[string]string{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.apiURL+"/sendMessage", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram api status %d", resp.StatusCode)
	}
	return nil
}
