package telegram

import (
	"context"
	"fmt"
	"time"

	"SwingRadar/internal/domain/models"
	domsvc "SwingRadar/internal/domain/service"
	"SwingRadar/pkg/config"
	xhttp "SwingRadar/pkg/http"
	applogger "SwingRadar/pkg/logger"
)

// Sender delivers messages through the Telegram bot API. Delivery
// failures are logged by callers and never retried automatically.
type Sender struct {
	token      string
	chatID     string
	baseURL    string
	chunkPause time.Duration
	formatter  *Formatter
	client     *xhttp.Client
	logger     *applogger.Logger
}

func NewSender(cfg *config.Config, l *applogger.Logger) *Sender {
	timeout := cfg.Telegram.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Sender{
		token:      cfg.Telegram.BotToken,
		chatID:     cfg.Telegram.ChatID,
		baseURL:    cfg.Telegram.APIBaseURL,
		chunkPause: cfg.Telegram.ChunkPause,
		formatter:  NewFormatter(cfg.Telegram.MaxMessageLength),
		client:     xhttp.NewClient(xhttp.WithTimeout(timeout)),
		logger:     l,
	}
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (s *Sender) send(ctx context.Context, text string) error {
	var resp apiResponse
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.token),
		Headers: map[string]string{"Content-Type": "application/json"},
		Body: sendMessageRequest{
			ChatID:    s.chatID,
			Text:      text,
			ParseMode: "HTML",
		},
	}, &resp)
	if err != nil {
		return fmt.Errorf("telegram sendMessage: %w", err)
	}
	if !resp.OK {
		return fmt.Errorf("telegram sendMessage: %s", resp.Description)
	}
	return nil
}

// NotifySignal sends one trading signal notification.
func (s *Sender) NotifySignal(ctx context.Context, sig models.TradingSignal) error {
	return s.send(ctx, s.formatter.FormatSignal(sig))
}

// SendReport sends the full batch report, chunked to the message size
// limit, with a pause between chunks for the sink's rate limit.
func (s *Sender) SendReport(ctx context.Context, snap models.BatchSnapshot) error {
	chunks := s.formatter.FormatReport(snap)
	for i, chunk := range chunks {
		if i > 0 && s.chunkPause > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.chunkPause):
			}
		}
		if err := s.send(ctx, chunk); err != nil {
			return fmt.Errorf("report chunk %d/%d: %w", i+1, len(chunks), err)
		}
	}
	s.logger.Info("report delivered", applogger.Int("chunks", len(chunks)))
	return nil
}

// Validate checks the bot token against getMe.
func (s *Sender) Validate(ctx context.Context) error {
	var resp apiResponse
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/bot%s/getMe", s.baseURL, s.token),
	}, &resp)
	if err != nil {
		return fmt.Errorf("telegram getMe: %w", err)
	}
	if !resp.OK {
		return fmt.Errorf("telegram getMe: %s", resp.Description)
	}
	return nil
}

// SendTest delivers a short connectivity test message.
func (s *Sender) SendTest(ctx context.Context) error {
	return s.send(ctx, "✅ Notifications are configured correctly.")
}

var _ domsvc.Notifier = (*Sender)(nil)
