package bot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/postforge/bot/internal/generator"
	"github.com/postforge/bot/internal/models"
	"github.com/postforge/bot/internal/publisher"
	"github.com/postforge/bot/internal/telegram"
	"go.uber.org/zap"
)

const dualVariantCallback = "AB_TEST"

// Fixed contrasting tones for dual-variant mode.
const (
	variantATone = models.ToneProfessional
	variantBTone = models.ToneHuman
)

// reviewSession carries one topic-to-publish-or-cancel cycle. In dual
// mode, active stays nil until the user picks a variant or edits
// manually.
type reviewSession struct {
	state    string
	topic    string
	mode     string
	active   *models.Draft
	variantA *models.Draft
	variantB *models.Draft
	media    []string
}

func newReviewSession() *reviewSession {
	return &reviewSession{
		state: models.ReviewStateAwaitingTopic,
		mode:  models.ReviewModeSingle,
	}
}

func (r *reviewSession) transition(to string) {
	if !models.IsValidReviewTransition(r.state, to) {
		// Transitions are driven by this package only; a miss here is a
		// programming error, not user input.
		panic(fmt.Sprintf("invalid review transition %s -> %s", r.state, to))
	}
	r.state = to
}

func (r *reviewSession) dualUnresolved() bool {
	return r.mode == models.ReviewModeDual && r.active == nil
}

// resetReview deletes any staged media files and drops the session.
func (b *Bot) resetReview(chatID int64) {
	r, ok := b.reviews[chatID]
	if !ok {
		return
	}
	b.removeMedia(r)
	delete(b.reviews, chatID)
}

func (b *Bot) removeMedia(r *reviewSession) {
	for _, path := range r.media {
		if err := os.Remove(path); err != nil {
			b.log.Warn("failed to delete staged media", zap.String("path", path), zap.Error(err))
		}
	}
	r.media = nil
}

func (b *Bot) handleReviewMessage(ctx context.Context, chatID int64, r *reviewSession, msg *telegram.Message) {
	switch r.state {
	case models.ReviewStateAwaitingTopic:
		b.handleTopic(ctx, chatID, r, strings.TrimSpace(msg.Text))
	case models.ReviewStateAwaitingTone:
		b.send(ctx, chatID, "Choose a tone using the buttons above, or /cancel.")
	case models.ReviewStateReviewing:
		b.handleReviewing(ctx, chatID, r, msg)
	}
}

func (b *Bot) handleTopic(ctx context.Context, chatID int64, r *reviewSession, topic string) {
	if topic == "" {
		b.send(ctx, chatID, "Send me a topic as plain text.")
		return
	}
	r.topic = topic
	b.removeMedia(r)
	r.transition(models.ReviewStateAwaitingTone)
	b.sendKeyboard(ctx, chatID, fmt.Sprintf("Topic: %s\n\nChoose a tone:", topic), toneKeyboard())
}

func toneKeyboard() telegram.InlineKeyboardMarkup {
	return telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{
		{
			{Text: "Human 🙋", CallbackData: models.ToneHuman},
			{Text: "Professional 💼", CallbackData: models.ToneProfessional},
		},
		{
			{Text: "Funny 😂", CallbackData: models.ToneFunny},
			{Text: "Logical 🧠", CallbackData: models.ToneLogical},
		},
		{
			{Text: "Technical 💻", CallbackData: models.ToneTechnical},
			{Text: "Mathematical 🔢", CallbackData: models.ToneMathematical},
		},
		{
			{Text: "🆚 A/B Options (Dual Tone)", CallbackData: dualVariantCallback},
		},
	}}
}

func (b *Bot) handleToneSelection(ctx context.Context, chatID int64, r *reviewSession, data string) {
	if data == dualVariantCallback {
		b.generateDualVariants(ctx, chatID, r)
		return
	}
	b.generateSingle(ctx, chatID, r, data)
}

func (b *Bot) generateSingle(ctx context.Context, chatID int64, r *reviewSession, tone string) {
	b.send(ctx, chatID, fmt.Sprintf("Generating %s tweet for: %s...", tone, r.topic))

	text, err := b.gen.Generate(ctx, r.topic, tone, "")
	if err != nil {
		b.log.Warn("interactive generation failed", zap.String("tone", tone), zap.Error(err))
		r.transition(models.ReviewStateAwaitingTopic)
		b.send(ctx, chatID, generationFailureNotice(err)+" Send me another topic, or /cancel.")
		return
	}

	r.mode = models.ReviewModeSingle
	r.active = &models.Draft{Topic: r.topic, Tone: tone, Text: text}
	r.transition(models.ReviewStateReviewing)
	b.send(ctx, chatID, fmt.Sprintf(
		"Here is the draft (%s):\n\n%s\n\nReply 'send' to post, 'regen' for a new take, attach photos, or type a new version to update.",
		tone, text,
	))
}

// generateDualVariants produces both drafts or none. With two
// generations already paid for, a partial result is not worth holding a
// session open for, so any failure terminates it.
func (b *Bot) generateDualVariants(ctx context.Context, chatID int64, r *reviewSession) {
	b.send(ctx, chatID, fmt.Sprintf("Generating A/B variants (%s vs %s) for: %s...", variantATone, variantBTone, r.topic))

	textA, errA := b.gen.Generate(ctx, r.topic, variantATone, "")
	textB, errB := b.gen.Generate(ctx, r.topic, variantBTone, "")
	if errA != nil || errB != nil {
		err := errA
		if err == nil {
			err = errB
		}
		b.log.Warn("dual-variant generation failed", zap.Error(err))
		r.transition(models.ReviewStateCancelled)
		delete(b.reviews, chatID)
		b.send(ctx, chatID, generationFailureNotice(err)+" Session closed, use /start to try again.")
		return
	}

	r.mode = models.ReviewModeDual
	r.variantA = &models.Draft{Topic: r.topic, Tone: variantATone, Text: textA}
	r.variantB = &models.Draft{Topic: r.topic, Tone: variantBTone, Text: textB}
	r.active = nil
	r.transition(models.ReviewStateReviewing)
	b.send(ctx, chatID, dualVariantMessage(r))
}

func dualVariantMessage(r *reviewSession) string {
	return fmt.Sprintf(
		"🆚 A/B Testing\n\n🅰️ Option A (%s):\n%s\n\n🅱️ Option B (%s):\n%s\n\nReply 'A' or 'B' to choose, 'regen' for new takes, or type your own version.",
		r.variantA.Tone, r.variantA.Text,
		r.variantB.Tone, r.variantB.Text,
	)
}

// handleReviewing dispatches reviewing-state input in priority order:
// photo, regenerate, variant selection, send, manual edit.
func (b *Bot) handleReviewing(ctx context.Context, chatID int64, r *reviewSession, msg *telegram.Message) {
	if len(msg.Photo) > 0 {
		b.attachPhoto(ctx, chatID, r, msg.Photo)
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	switch strings.ToLower(text) {
	case "regen", "regenerate":
		b.regenerate(ctx, chatID, r)
		return
	case "send":
		b.publish(ctx, chatID, r)
		return
	}

	if r.dualUnresolved() {
		switch strings.ToUpper(text) {
		case "A", "OPTION A":
			b.selectVariant(ctx, chatID, r, r.variantA, "A")
			return
		case "B", "OPTION B":
			b.selectVariant(ctx, chatID, r, r.variantB, "B")
			return
		}
	}

	// Manual edit: trusted verbatim, no length or content validation.
	r.active = &models.Draft{Topic: r.topic, Text: text}
	r.mode = models.ReviewModeSingle
	r.transition(models.ReviewStateReviewing)
	b.send(ctx, chatID, fmt.Sprintf(
		"Updated draft:\n\n%s\n\nReply 'send' to post, attach photos, or type a new version.", text,
	))
}

func (b *Bot) attachPhoto(ctx context.Context, chatID int64, r *reviewSession, photos []telegram.PhotoSize) {
	// Telegram lists sizes ascending; take the original.
	fileID := photos[len(photos)-1].FileID
	path, err := b.msgr.DownloadPhoto(ctx, fileID, b.mediaDir)
	if err != nil {
		b.log.Warn("photo download failed", zap.Error(err))
		b.send(ctx, chatID, "Couldn't fetch that photo, try again.")
		return
	}
	r.media = append(r.media, path)
	b.send(ctx, chatID, fmt.Sprintf("Photo attached! (%d total). Reply 'send' to post or attach more.", len(r.media)))
}

func (b *Bot) selectVariant(ctx context.Context, chatID int64, r *reviewSession, chosen *models.Draft, label string) {
	draft := *chosen
	r.active = &draft
	r.mode = models.ReviewModeSingle
	b.send(ctx, chatID, fmt.Sprintf("Selected Option %s. Reply 'send' to post it.", label))
}

func (b *Bot) regenerate(ctx context.Context, chatID int64, r *reviewSession) {
	if r.dualUnresolved() {
		textA, errA := b.gen.Generate(ctx, r.topic, variantATone, "")
		textB, errB := b.gen.Generate(ctx, r.topic, variantBTone, "")
		if errA != nil || errB != nil {
			b.send(ctx, chatID, "Regeneration failed, keeping the current variants.")
			return
		}
		r.variantA.Text = textA
		r.variantB.Text = textB
		b.send(ctx, chatID, dualVariantMessage(r))
		return
	}

	if r.active == nil {
		return
	}
	tone := r.active.Tone
	if tone == "" {
		tone = models.ToneProfessional
	}
	text, err := b.gen.Generate(ctx, r.topic, tone, "")
	if err != nil {
		b.send(ctx, chatID, generationFailureNotice(err)+" Keeping the current draft.")
		return
	}
	r.active.Text = text
	r.active.Tone = tone
	b.send(ctx, chatID, fmt.Sprintf(
		"Here is the draft (%s):\n\n%s\n\nReply 'send' to post, 'regen' for a new take, or type a new version.",
		tone, text,
	))
}

func (b *Bot) publish(ctx context.Context, chatID int64, r *reviewSession) {
	if r.active == nil {
		b.send(ctx, chatID, "No tweet to send. If A/B testing, select A or B first.")
		return
	}

	b.send(ctx, chatID, "Posting to X...")
	err := b.pub.Publish(ctx, r.active.Text, r.media)

	// Staged files are removed no matter how the publish went, so
	// storage never leaks across retries.
	b.removeMedia(r)

	if err != nil {
		b.log.Error("interactive publish failed", zap.Error(err))
		b.send(ctx, chatID, publishFailureNotice(err)+" Reply 'send' to retry.")
		return
	}

	r.transition(models.ReviewStatePublished)
	delete(b.reviews, chatID)
	b.send(ctx, chatID, "Posted successfully! ✅")
}

func generationFailureNotice(err error) string {
	switch {
	case errors.Is(err, generator.ErrTooLong):
		return "The model keeps producing over-length drafts."
	case errors.Is(err, generator.ErrNoValidDraft):
		return "Couldn't get a usable draft from the model."
	default:
		return "Generation failed."
	}
}

func publishFailureNotice(err error) string {
	var pubErr *publisher.PublishError
	if errors.As(err, &pubErr) {
		switch pubErr.Kind {
		case publisher.FailureRateLimited:
			return "Failed to post: rate limited by X."
		case publisher.FailureDuplicate:
			return "Failed to post: X rejected it as duplicate content."
		case publisher.FailureAuth:
			return "Failed to post: credentials rejected, check API permissions."
		}
	}
	return "Failed to post."
}
