package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/postforge/bot/internal/calendar"
	"github.com/postforge/bot/internal/models"
	"github.com/postforge/bot/internal/telegram"
	"go.uber.org/zap"
)

// Wizard steps
const (
	wizardStepStartDate = "start_date"
	wizardStepEndDate   = "end_date"
	wizardStepQuota     = "quota"
	wizardStepThemes    = "themes"
)

// ThemeCatalog is the fixed set offered by the theme picker. Callbacks
// carry catalog indexes to stay inside Telegram's 64-byte payload cap.
var ThemeCatalog = []string{
	"AI & LLMs",
	"Machine Learning",
	"Software Engineering",
	"Startups",
	"Open Source",
	"Productivity",
	"Tech Careers",
	"Math & Logic",
}

const (
	themeTogglePrefix = "theme_toggle_"
	themeDoneCallback = "theme_done"
)

type wizardSession struct {
	step      string
	startDate string
	endDate   string
	quota     int
	selected  map[int]bool
}

func newWizardSession() *wizardSession {
	return &wizardSession{
		step:     wizardStepStartDate,
		selected: make(map[int]bool),
	}
}

// handleWizardCallback consumes calendar and theme callbacks while a
// wizard is active. It reports whether the callback belonged to the
// wizard.
func (b *Bot) handleWizardCallback(ctx context.Context, chatID int64, w *wizardSession, cb *telegram.CallbackQuery) bool {
	data := cb.Data

	if calendar.IsCalendarCallback(data) {
		if w.step != wizardStepStartDate && w.step != wizardStepEndDate {
			b.answer(ctx, cb.ID)
			return true
		}
		b.handleCalendarSelection(ctx, chatID, w, cb)
		return true
	}

	if strings.HasPrefix(data, themeTogglePrefix) || data == themeDoneCallback {
		if w.step != wizardStepThemes {
			b.answer(ctx, cb.ID)
			return true
		}
		b.handleThemeCallback(ctx, chatID, w, cb)
		return true
	}

	return false
}

func (b *Bot) handleCalendarSelection(ctx context.Context, chatID int64, w *wizardSession, cb *telegram.CallbackQuery) {
	sel, err := calendar.ParseSelection(cb.Data)
	if err != nil {
		b.log.Warn("bad calendar callback", zap.String("data", cb.Data), zap.Error(err))
		b.answer(ctx, cb.ID)
		return
	}
	b.answer(ctx, cb.ID)

	switch sel.Kind {
	case calendar.SelectionIgnore:
		return

	case calendar.SelectionNav:
		if err := b.msgr.EditReplyMarkup(ctx, chatID, cb.Message.MessageID, calendar.Render(sel.Year, sel.Month)); err != nil {
			b.log.Warn("calendar nav edit failed", zap.Error(err))
		}
		return

	case calendar.SelectionDay:
		picked := sel.Date.Format(models.DateLayout)
		if w.step == wizardStepStartDate {
			w.startDate = picked
			w.step = wizardStepEndDate
			b.sendKeyboard(ctx, chatID,
				fmt.Sprintf("Start date: %s. Now pick an end date:", picked),
				calendar.Render(sel.Date.Year(), sel.Date.Month()))
			return
		}

		// ISO dates compare lexicographically.
		if picked < w.startDate {
			b.sendKeyboard(ctx, chatID,
				fmt.Sprintf("End date %s is before start date %s. Pick an end date on or after the start:", picked, w.startDate),
				calendar.Render(sel.Date.Year(), sel.Date.Month()))
			return
		}
		w.endDate = picked
		w.step = wizardStepQuota
		b.send(ctx, chatID, fmt.Sprintf("Posting from %s to %s. How many tweets per day?", w.startDate, w.endDate))
	}
}

func (b *Bot) handleWizardMessage(ctx context.Context, chatID int64, w *wizardSession, text string) {
	if w.step != wizardStepQuota {
		b.send(ctx, chatID, "Use the buttons above, or /cancel.")
		return
	}

	n, err := strconv.Atoi(text)
	if err != nil || n < 1 {
		b.send(ctx, chatID, "Please send a positive whole number of tweets per day.")
		return
	}
	w.quota = n
	w.step = wizardStepThemes
	b.sendKeyboard(ctx, chatID, "Select at least one theme, then press Done.", themeKeyboard(w.selected))
}

func themeKeyboard(selected map[int]bool) telegram.InlineKeyboardMarkup {
	var rows [][]telegram.InlineKeyboardButton
	var row []telegram.InlineKeyboardButton
	for i, theme := range ThemeCatalog {
		label := theme
		if selected[i] {
			label = "✅ " + theme
		}
		row = append(row, telegram.InlineKeyboardButton{
			Text:         label,
			CallbackData: themeTogglePrefix + strconv.Itoa(i),
		})
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, []telegram.InlineKeyboardButton{
		{Text: "Done ✔️", CallbackData: themeDoneCallback},
	})
	return telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func (b *Bot) handleThemeCallback(ctx context.Context, chatID int64, w *wizardSession, cb *telegram.CallbackQuery) {
	b.answer(ctx, cb.ID)

	if cb.Data == themeDoneCallback {
		b.completeWizard(ctx, chatID, w)
		return
	}

	i, err := strconv.Atoi(strings.TrimPrefix(cb.Data, themeTogglePrefix))
	if err != nil || i < 0 || i >= len(ThemeCatalog) {
		b.log.Warn("bad theme callback", zap.String("data", cb.Data))
		return
	}
	w.selected[i] = !w.selected[i]
	if err := b.msgr.EditReplyMarkup(ctx, chatID, cb.Message.MessageID, themeKeyboard(w.selected)); err != nil {
		b.log.Warn("theme keyboard edit failed", zap.Error(err))
	}
}

func (b *Bot) completeWizard(ctx context.Context, chatID int64, w *wizardSession) {
	var themes []string
	for i, theme := range ThemeCatalog {
		if w.selected[i] {
			themes = append(themes, theme)
		}
	}
	if len(themes) == 0 {
		b.send(ctx, chatID, "Select at least one theme before pressing Done.")
		return
	}

	cfg := models.CampaignConfig{
		StartDate:    w.startDate,
		EndDate:      w.endDate,
		TweetsPerDay: w.quota,
		Themes:       themes,
	}
	today := b.now().Format(models.DateLayout)
	if err := b.store.Configure(cfg, today); err != nil {
		b.log.Error("failed to persist campaign", zap.Error(err))
		b.send(ctx, chatID, "Failed to save the configuration, press Done to try again.")
		return
	}

	delete(b.wizards, chatID)
	b.send(ctx, chatID, fmt.Sprintf(
		"Autonomous posting configured!\n📅 Range: %s to %s\n🔢 Target: %d tweets/day\n📝 Themes: %s",
		cfg.StartDate, cfg.EndDate, cfg.TweetsPerDay, strings.Join(themes, ", "),
	))
}
