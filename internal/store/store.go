// Package store owns the durable campaign state. Every mutation happens
// under one mutex and is persisted before the method returns, so the
// interactive wizard and the scheduler tick never interleave a stale
// write.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/postforge/bot/internal/models"
	"go.uber.org/zap"
)

type Store struct {
	mu    sync.Mutex
	path  string
	state models.CampaignState
	log   *zap.Logger
}

// Open loads existing state from path. A missing or malformed file
// degrades to empty state rather than failing startup.
func Open(path string, log *zap.Logger) *Store {
	s := &Store{path: path, log: log}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("failed to read state file, starting empty", zap.String("path", path), zap.Error(err))
		}
		return s
	}
	if err := json.Unmarshal(data, &s.state); err != nil {
		log.Warn("malformed state file, starting empty", zap.String("path", path), zap.Error(err))
		s.state = models.CampaignState{}
	}
	return s
}

// Snapshot returns a deep copy safe to read without holding the lock.
func (s *Store) Snapshot() models.CampaignState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyState()
}

func (s *Store) copyState() models.CampaignState {
	out := s.state
	if s.state.Config != nil {
		cfg := *s.state.Config
		cfg.Themes = append([]string(nil), s.state.Config.Themes...)
		out.Config = &cfg
	}
	return out
}

// Configure installs a new campaign and resets the daily counter to
// (today, 0) in the same atomic step.
func (s *Store) Configure(cfg models.CampaignConfig, today string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Config = &cfg
	s.state.DailyStats = models.DailyCounter{Date: today, Count: 0}
	return s.persist()
}

// ClearConfig ends the campaign. The counter is left alone; RollDay
// handles it on the next configured day.
func (s *Store) ClearConfig() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Config = nil
	return s.persist()
}

// RollDay resets the counter when the stored date is not today and
// returns the current counter. Both the wizard and the scheduler go
// through here so the reset logic exists exactly once.
func (s *Store) RollDay(today string) (models.DailyCounter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.DailyStats.Date != today {
		s.state.DailyStats = models.DailyCounter{Date: today, Count: 0}
		if err := s.persist(); err != nil {
			return s.state.DailyStats, err
		}
	}
	return s.state.DailyStats, nil
}

// IncrementPosted bumps today's count after a successful autonomous
// publish and returns the new count.
func (s *Store) IncrementPosted(today string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.DailyStats.Date != today {
		s.state.DailyStats = models.DailyCounter{Date: today, Count: 0}
	}
	s.state.DailyStats.Count++
	if err := s.persist(); err != nil {
		return s.state.DailyStats.Count, err
	}
	return s.state.DailyStats.Count, nil
}

// persist rewrites the whole file via a temp file and rename. Caller
// must hold the lock.
func (s *Store) persist() error {
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
