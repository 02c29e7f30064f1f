package store

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/postforge/bot/internal/models"
	"go.uber.org/zap"
)

func tempStorePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "state.json")
}

func TestRoundTrip(t *testing.T) {
	path := tempStorePath(t)

	s := Open(path, zap.NewNop())
	cfg := models.CampaignConfig{
		StartDate:    "2026-08-01",
		EndDate:      "2026-08-31",
		TweetsPerDay: 3,
		Themes:       []string{"AI", "Go"},
	}
	if err := s.Configure(cfg, "2026-08-31"); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if _, err := s.IncrementPosted("2026-08-31"); err != nil {
		t.Fatalf("IncrementPosted: %v", err)
	}

	reloaded := Open(path, zap.NewNop()).Snapshot()
	if reloaded.Config == nil {
		t.Fatal("reloaded config is nil")
	}
	if !reflect.DeepEqual(*reloaded.Config, cfg) {
		t.Errorf("reloaded config = %+v, want %+v", *reloaded.Config, cfg)
	}
	want := models.DailyCounter{Date: "2026-08-31", Count: 1}
	if reloaded.DailyStats != want {
		t.Errorf("reloaded counter = %+v, want %+v", reloaded.DailyStats, want)
	}
}

func TestOpenMissingFile(t *testing.T) {
	s := Open(tempStorePath(t), zap.NewNop())
	state := s.Snapshot()
	if state.Config != nil {
		t.Errorf("missing file should load empty state, got config %+v", state.Config)
	}
}

func TestOpenCorruptFile(t *testing.T) {
	path := tempStorePath(t)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := Open(path, zap.NewNop())
	state := s.Snapshot()
	if state.Config != nil || state.DailyStats.Count != 0 {
		t.Errorf("corrupt file should load empty state, got %+v", state)
	}
}

func TestRollDay(t *testing.T) {
	s := Open(tempStorePath(t), zap.NewNop())
	if err := s.Configure(models.CampaignConfig{TweetsPerDay: 2, Themes: []string{"AI"}}, "2026-08-30"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.IncrementPosted("2026-08-30"); err != nil {
		t.Fatal(err)
	}

	// Same day: counter untouched.
	counter, err := s.RollDay("2026-08-30")
	if err != nil {
		t.Fatal(err)
	}
	if counter.Count != 1 {
		t.Errorf("same-day RollDay count = %d, want 1", counter.Count)
	}

	// New day: reset.
	counter, err = s.RollDay("2026-08-31")
	if err != nil {
		t.Fatal(err)
	}
	if counter.Date != "2026-08-31" || counter.Count != 0 {
		t.Errorf("rolled counter = %+v, want {2026-08-31 0}", counter)
	}
}

func TestConfigureResetsCounter(t *testing.T) {
	s := Open(tempStorePath(t), zap.NewNop())
	if err := s.Configure(models.CampaignConfig{TweetsPerDay: 1, Themes: []string{"AI"}}, "2026-08-31"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.IncrementPosted("2026-08-31"); err != nil {
		t.Fatal(err)
	}

	if err := s.Configure(models.CampaignConfig{TweetsPerDay: 5, Themes: []string{"Go"}}, "2026-08-31"); err != nil {
		t.Fatal(err)
	}
	state := s.Snapshot()
	if state.DailyStats.Count != 0 {
		t.Errorf("reconfigure should reset counter, got %d", state.DailyStats.Count)
	}
	if state.Config.TweetsPerDay != 5 {
		t.Errorf("config not replaced: %+v", state.Config)
	}
}

func TestClearConfig(t *testing.T) {
	path := tempStorePath(t)
	s := Open(path, zap.NewNop())
	if err := s.Configure(models.CampaignConfig{TweetsPerDay: 1, Themes: []string{"AI"}}, "2026-08-31"); err != nil {
		t.Fatal(err)
	}
	if err := s.ClearConfig(); err != nil {
		t.Fatal(err)
	}

	if got := Open(path, zap.NewNop()).Snapshot(); got.Config != nil {
		t.Errorf("cleared config persisted as %+v, want nil", got.Config)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := Open(tempStorePath(t), zap.NewNop())
	if err := s.Configure(models.CampaignConfig{TweetsPerDay: 1, Themes: []string{"AI"}}, "2026-08-31"); err != nil {
		t.Fatal(err)
	}

	snap := s.Snapshot()
	snap.Config.Themes[0] = "mutated"
	snap.Config.TweetsPerDay = 99

	fresh := s.Snapshot()
	if fresh.Config.Themes[0] != "AI" || fresh.Config.TweetsPerDay != 1 {
		t.Errorf("snapshot mutation leaked into store: %+v", fresh.Config)
	}
}
