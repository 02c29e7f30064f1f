// Package bot routes inbound Telegram updates into the two interactive
// flows: the draft review session and the campaign configuration wizard.
package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/postforge/bot/internal/calendar"
	"github.com/postforge/bot/internal/models"
	"github.com/postforge/bot/internal/store"
	"github.com/postforge/bot/internal/telegram"
	"go.uber.org/zap"
)

// Messenger is the outbound side of the chat transport.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendKeyboard(ctx context.Context, chatID int64, text string, kb telegram.InlineKeyboardMarkup) error
	EditReplyMarkup(ctx context.Context, chatID, messageID int64, kb telegram.InlineKeyboardMarkup) error
	AnswerCallback(ctx context.Context, callbackID string) error
	DownloadPhoto(ctx context.Context, fileID, dir string) (string, error)
}

type ContentGenerator interface {
	Generate(ctx context.Context, topic, tone, styleHint string) (string, error)
}

type Publisher interface {
	Publish(ctx context.Context, text string, mediaPaths []string) error
}

type Bot struct {
	msgr          Messenger
	gen           ContentGenerator
	pub           Publisher
	store         *store.Store
	allowedUserID int64
	mediaDir      string
	log           *zap.Logger

	// One update at a time; webhook mode can deliver concurrently.
	mu      sync.Mutex
	reviews map[int64]*reviewSession
	wizards map[int64]*wizardSession

	now func() time.Time
}

func New(msgr Messenger, gen ContentGenerator, pub Publisher, st *store.Store, allowedUserID int64, mediaDir string, log *zap.Logger) *Bot {
	return &Bot{
		msgr:          msgr,
		gen:           gen,
		pub:           pub,
		store:         st,
		allowedUserID: allowedUserID,
		mediaDir:      mediaDir,
		log:           log,
		reviews:       make(map[int64]*reviewSession),
		wizards:       make(map[int64]*wizardSession),
		now:           time.Now,
	}
}

// HandleUpdate processes one inbound update. Updates from anyone but
// the allowed user are dropped silently.
func (b *Bot) HandleUpdate(ctx context.Context, upd telegram.Update) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case upd.CallbackQuery != nil:
		cb := upd.CallbackQuery
		if !b.allowed(cb.From.ID) {
			return
		}
		b.handleCallback(ctx, cb)
	case upd.Message != nil:
		msg := upd.Message
		if msg.From == nil || !b.allowed(msg.From.ID) {
			return
		}
		b.handleMessage(ctx, msg)
	}
}

func (b *Bot) allowed(userID int64) bool {
	return b.allowedUserID == 0 || userID == b.allowedUserID
}

func (b *Bot) handleMessage(ctx context.Context, msg *telegram.Message) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	if strings.HasPrefix(text, "/") {
		b.handleCommand(ctx, chatID, text)
		return
	}
	if w, ok := b.wizards[chatID]; ok {
		b.handleWizardMessage(ctx, chatID, w, text)
		return
	}
	if r, ok := b.reviews[chatID]; ok {
		b.handleReviewMessage(ctx, chatID, r, msg)
		return
	}
	b.send(ctx, chatID, "Send /start to draft a tweet or /automate to configure autonomous posting.")
}

func (b *Bot) handleCommand(ctx context.Context, chatID int64, text string) {
	cmd := text
	if i := strings.IndexAny(cmd, " @"); i >= 0 {
		cmd = cmd[:i]
	}

	switch cmd {
	case "/start":
		delete(b.wizards, chatID)
		b.resetReview(chatID)
		b.reviews[chatID] = newReviewSession()
		b.send(ctx, chatID, "Hi! Send me a topic or thought, and I'll generate a tweet for you.")

	case "/automate":
		b.wizards[chatID] = newWizardSession()
		now := b.now()
		b.sendKeyboard(ctx, chatID, "Let's configure autonomous posting. Pick a start date:", calendar.Render(now.Year(), now.Month()))

	case "/status":
		b.send(ctx, chatID, b.statusText())

	case "/stop":
		if err := b.store.ClearConfig(); err != nil {
			b.log.Error("failed to clear campaign", zap.Error(err))
			b.send(ctx, chatID, "Failed to stop autonomous posting, try again.")
			return
		}
		b.send(ctx, chatID, "Autonomous posting stopped.")

	case "/cancel":
		delete(b.wizards, chatID)
		if _, ok := b.reviews[chatID]; ok {
			b.resetReview(chatID)
			b.reviews[chatID] = newReviewSession()
		}
		b.send(ctx, chatID, "Operation cancelled.")

	default:
		b.send(ctx, chatID, "Unknown command. Try /start, /automate, /status, /stop or /cancel.")
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *telegram.CallbackQuery) {
	if cb.Message == nil {
		b.answer(ctx, cb.ID)
		return
	}
	chatID := cb.Message.Chat.ID
	data := cb.Data

	if w, ok := b.wizards[chatID]; ok {
		if b.handleWizardCallback(ctx, chatID, w, cb) {
			return
		}
	}

	if r, ok := b.reviews[chatID]; ok && r.state == models.ReviewStateAwaitingTone {
		if data == dualVariantCallback || models.IsTone(data) {
			b.answer(ctx, cb.ID)
			b.handleToneSelection(ctx, chatID, r, data)
			return
		}
	}

	// Stale button from an earlier step; acknowledge and drop.
	b.answer(ctx, cb.ID)
}

func (b *Bot) statusText() string {
	state := b.store.Snapshot()
	if state.Config == nil {
		return "Autonomous posting is NOT configured. Use /automate to set it up."
	}
	cfg := state.Config
	return fmt.Sprintf(
		"📅 Range: %s to %s\n🔢 Target: %d tweets/day\n📝 Themes: %s\n📊 Today's Count: %d",
		cfg.StartDate, cfg.EndDate, cfg.TweetsPerDay,
		strings.Join(cfg.Themes, ", "),
		state.DailyStats.Count,
	)
}

func (b *Bot) send(ctx context.Context, chatID int64, text string) {
	if err := b.msgr.SendMessage(ctx, chatID, text); err != nil {
		b.log.Warn("send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) sendKeyboard(ctx context.Context, chatID int64, text string, kb telegram.InlineKeyboardMarkup) {
	if err := b.msgr.SendKeyboard(ctx, chatID, text, kb); err != nil {
		b.log.Warn("send keyboard failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) answer(ctx context.Context, callbackID string) {
	if err := b.msgr.AnswerCallback(ctx, callbackID); err != nil {
		b.log.Warn("answer callback failed", zap.Error(err))
	}
}
