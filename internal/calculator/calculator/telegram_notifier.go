package calculator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/models"
)

// Min interval between any two Telegram messages to the same chat to avoid 429 Too Many Requests (~30/min limit).
const telegramSendInterval = 2 * time.Second

type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// queuedMessage represents a message queued for sending
type queuedMessage struct {
	text      string
	candidate *models.ValueBetCandidate
}

// TelegramNotifier sends Telegram alerts for emitted value bets
type TelegramNotifier struct {
	bot      telegramSender
	chatID   int64
	interval time.Duration
	mu       sync.Mutex
	lastSend time.Time

	// Async queue for sending messages
	queue     chan queuedMessage
	queueDone chan struct{}
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewTelegramNotifier connects the bot and starts the sender goroutine.
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	bot.Debug = false

	n := newTelegramNotifier(bot, chatID, telegramSendInterval)
	slog.Info("Telegram notifier initialized", "chat_id", chatID, "bot", bot.Self.UserName)
	return n, nil
}

func newTelegramNotifier(bot telegramSender, chatID int64, interval time.Duration) *TelegramNotifier {
	ctx, cancel := context.WithCancel(context.Background())
	n := &TelegramNotifier{
		bot:       bot,
		chatID:    chatID,
		interval:  interval,
		queue:     make(chan queuedMessage, 100), // Buffer up to 100 messages
		queueDone: make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
	}
	go n.messageSender()
	return n
}

func (n *TelegramNotifier) Name() string { return "telegram" }

// Emit queues an alert for c (non-blocking).
func (n *TelegramNotifier) Emit(ctx context.Context, c models.ValueBetCandidate) error {
	return n.enqueue(ctx, queuedMessage{text: formatValueBetAlert(c), candidate: &c})
}

// SendText queues a plain message (non-blocking).
func (n *TelegramNotifier) SendText(ctx context.Context, text string) error {
	return n.enqueue(ctx, queuedMessage{text: text})
}

func (n *TelegramNotifier) enqueue(ctx context.Context, msg queuedMessage) error {
	if n.ctx.Err() != nil {
		return fmt.Errorf("notifier stopped")
	}
	select {
	case <-n.ctx.Done():
		return fmt.Errorf("notifier stopped")
	case <-ctx.Done():
		return ctx.Err()
	case n.queue <- msg:
		return nil
	default:
		return fmt.Errorf("message queue is full")
	}
}

// QueueLen returns the number of messages waiting to be sent.
func (n *TelegramNotifier) QueueLen() int {
	return len(n.queue)
}

// Stop sends what is still queued and stops the sender.
func (n *TelegramNotifier) Stop() {
	n.cancel()
	<-n.queueDone
}

// messageSender runs in background and sends queued messages with proper intervals
func (n *TelegramNotifier) messageSender() {
	defer close(n.queueDone)
	for {
		select {
		case <-n.ctx.Done():
			// Drain remaining messages before exit
			for {
				select {
				case msg := <-n.queue:
					n.send(msg)
				default:
					return
				}
			}
		case msg := <-n.queue:
			n.waitInterval()
			n.send(msg)
		}
	}
}

func (n *TelegramNotifier) waitInterval() {
	n.mu.Lock()
	wait := n.interval - time.Since(n.lastSend)
	n.mu.Unlock()
	if wait <= 0 {
		return
	}
	select {
	case <-n.ctx.Done():
	case <-time.After(wait):
	}
}

func (n *TelegramNotifier) send(msg queuedMessage) {
	tgMsg := tgbotapi.NewMessage(n.chatID, msg.text)
	tgMsg.ParseMode = tgbotapi.ModeMarkdown

	n.mu.Lock()
	n.lastSend = time.Now()
	n.mu.Unlock()

	args := []interface{}{"queue_length", len(n.queue), "message_preview", truncateString(msg.text, 50)}
	if msg.candidate != nil {
		args = append(args,
			"match", msg.candidate.MatchName(),
			"edge_percent", msg.candidate.EdgePercent,
			"delay_since_discovery_sec", time.Since(msg.candidate.DiscoveredAt).Seconds())
	}
	if _, err := n.bot.Send(tgMsg); err != nil {
		slog.Error("Telegram send: failed", append([]interface{}{"error", err}, args...)...)
		return
	}
	slog.Info("Telegram send: success", args...)
}

func formatValueBetAlert(c models.ValueBetCandidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Value bet +%.2f%%*\n\n", c.EdgePercent)
	fmt.Fprintf(&b, "%s\n", escapeMarkdown(c.MatchName()))
	fmt.Fprintf(&b, "%s / %s\n", escapeMarkdown(c.Sport), escapeMarkdown(c.League))
	fmt.Fprintf(&b, "Start: %s\n\n", c.StartTime.UTC().Format("2006-01-02 15:04 UTC"))

	market := c.Market
	if c.Line != nil {
		market += " " + models.FormatLine(c.Line)
	}
	fmt.Fprintf(&b, "Market: %s\n", escapeMarkdown(market))
	fmt.Fprintf(&b, "Selection: %s\n", c.Selection.String())
	fmt.Fprintf(&b, "Target: %.2f (%s)\n", c.TargetOdds, escapeMarkdown(c.Target.Source))
	fmt.Fprintf(&b, "Reference: %.2f (%s)\n", c.ReferenceOdds, escapeMarkdown(c.Reference.Source))
	return b.String()
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// truncateString truncates a string to maxLen characters
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
