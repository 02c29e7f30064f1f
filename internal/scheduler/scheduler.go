// Package scheduler decides, once per tick, whether to generate and
// publish an autonomous post right now. The per-tick probability is
// needed/intervalsLeft, which spreads posts across the day and raises
// urgency as midnight approaches, so the expected daily total converges
// to the quota without a fixed timetable.
package scheduler

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/postforge/bot/internal/models"
	"github.com/postforge/bot/internal/store"
	"go.uber.org/zap"
)

type ContentGenerator interface {
	Generate(ctx context.Context, topic, tone, styleHint string) (string, error)
}

type Publisher interface {
	Publish(ctx context.Context, text string, mediaPaths []string) error
}

// Framing styles mixed into autonomous prompts so quota posts on the
// same theme do not all read alike.
var framingStyles = []string{
	"Use a metaphor to explain.",
	"Ask a thought-provoking question.",
	"Make a controversial but defensible statement.",
	"Share a quick tip or 'did you know'.",
	"Use a 'unpopular opinion' format.",
	"Connect this to a historical event.",
	"Explain it like I'm 5 (ELI5).",
	"Be sarcastic and witty.",
	"Be strictly professional and data-driven.",
}

type Scheduler struct {
	store  *store.Store
	gen    ContentGenerator
	pub    Publisher
	period time.Duration
	log    *zap.Logger

	// Overridable for deterministic tests.
	now  func() time.Time
	draw func() float64
	rng  *rand.Rand
}

func New(st *store.Store, gen ContentGenerator, pub Publisher, period time.Duration, log *zap.Logger) *Scheduler {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Scheduler{
		store:  st,
		gen:    gen,
		pub:    pub,
		period: period,
		log:    log,
		now:    time.Now,
		draw:   rng.Float64,
		rng:    rng,
	}
}

// Tick runs one scheduling decision. Every failure path is a no-op; the
// next tick gets a fresh chance, with a larger quota gap raising the
// probability.
func (s *Scheduler) Tick(ctx context.Context) {
	state := s.store.Snapshot()
	if state.Config == nil {
		return
	}
	cfg := *state.Config

	now := s.now()
	today := now.Format(models.DateLayout)

	start, end, err := cfg.ParseDates()
	if err != nil {
		s.log.Error("campaign config has malformed dates", zap.Error(err))
		return
	}
	current, _ := time.Parse(models.DateLayout, today)

	if current.After(end) {
		s.log.Info("campaign complete, clearing config",
			zap.String("end_date", cfg.EndDate),
		)
		if err := s.store.ClearConfig(); err != nil {
			s.log.Error("failed to clear completed campaign", zap.Error(err))
		}
		return
	}
	if current.Before(start) {
		s.log.Debug("campaign not started yet", zap.String("start_date", cfg.StartDate))
		return
	}

	counter, err := s.store.RollDay(today)
	if err != nil {
		s.log.Error("failed to roll daily counter", zap.Error(err))
		return
	}
	if counter.Count >= cfg.TweetsPerDay {
		s.log.Debug("daily quota reached", zap.Int("count", counter.Count))
		return
	}

	needed := cfg.TweetsPerDay - counter.Count
	prob := s.probability(needed, now)
	s.log.Info("tick",
		zap.Int("needed", needed),
		zap.Float64("probability", prob),
	)
	if s.draw() > prob {
		return
	}

	theme := cfg.Themes[s.rng.Intn(len(cfg.Themes))]
	style := framingStyles[s.rng.Intn(len(framingStyles))]

	text, err := s.gen.Generate(ctx, theme, models.ToneProfessional, style)
	if err != nil {
		s.log.Warn("autonomous generation failed", zap.String("theme", theme), zap.Error(err))
		return
	}

	if err := s.pub.Publish(ctx, text, nil); err != nil {
		s.log.Error("autonomous publish failed", zap.String("theme", theme), zap.Error(err))
		return
	}

	count, err := s.store.IncrementPosted(today)
	if err != nil {
		s.log.Error("failed to persist post count", zap.Error(err))
		return
	}
	s.log.Info("autonomous post published",
		zap.String("theme", theme),
		zap.Int("count_today", count),
	)
}

// probability returns clamp(needed/intervalsLeft, 0, 1). The 0.5 floor
// on intervalsLeft prevents division blow-up near midnight and keeps a
// final catch-up chance.
func (s *Scheduler) probability(needed int, now time.Time) float64 {
	endOfDay := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())
	minutesLeft := endOfDay.Sub(now).Minutes()

	intervalsLeft := math.Max(minutesLeft/s.period.Minutes(), 0.5)
	p := float64(needed) / intervalsLeft
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
