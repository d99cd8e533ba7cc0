package monitor

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/zombiearmy/horde/internal/cache"
	"github.com/zombiearmy/horde/internal/storage"
)

const defaultInterval = 10 * time.Second

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	Logger  zerolog.Logger
	Cache   *cache.ArmyCache
	Backend storage.Backend
	// StorageType is reported as-is in the status.
	StorageType string
	// StatusPath is rewritten on every tick. Empty disables the file.
	StatusPath string
	Interval   time.Duration
}

// Status is a point-in-time view of the process.
type Status struct {
	Time           time.Time `json:"time" yaml:"time"`
	Uptime         string    `json:"uptime" yaml:"uptime"`
	Storage        string    `json:"storage" yaml:"storage"`
	CachedArmies   int       `json:"cachedArmies" yaml:"cachedArmies"`
	PendingBattles int       `json:"pendingBattles" yaml:"pendingBattles"`
}

// pendingCounter is implemented by backends that queue battle writes.
type pendingCounter interface {
	PendingBattles() int
}

// Service manages status monitoring
type Service struct {
	deps    Dependencies
	started time.Time

	mu        sync.Mutex
	isRunning bool
	stopChan  chan struct{}
	done      chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Interval <= 0 {
		deps.Interval = defaultInterval
	}
	return &Service{
		deps:    deps,
		started: time.Now(),
	}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// GetStatus returns the current program status
func (s *Service) GetStatus() Status {
	now := time.Now()
	st := Status{
		Time:    now.UTC(),
		Uptime:  now.Sub(s.started).Round(time.Second).String(),
		Storage: s.deps.StorageType,
	}
	if s.deps.Cache != nil {
		st.CachedArmies = s.deps.Cache.Len()
	}
	if pc, ok := s.deps.Backend.(pendingCounter); ok {
		st.PendingBattles = pc.PendingBattles()
	}
	return st
}

// WriteStatusFile replaces the status file with the current status.
func (s *Service) WriteStatusFile() error {
	if s.deps.StatusPath == "" {
		return nil
	}
	data, err := json.MarshalIndent(s.GetStatus(), "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.deps.StatusPath, data, 0644); err != nil {
		return fmt.Errorf("error writing status file: %w", err)
	}
	return nil
}

// Start starts the status monitor goroutine
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})

	go s.loop(s.stopChan, s.done)
}

func (s *Service) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	s.deps.Logger.Debug().Dur("interval", s.deps.Interval).Msg("Starting status monitor")

	ticker := time.NewTicker(s.deps.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := s.WriteStatusFile(); err != nil {
				s.deps.Logger.Error().Err(err).Msg("Error writing status file")
			}
			st := s.GetStatus()
			s.deps.Logger.Debug().
				Int("cachedArmies", st.CachedArmies).
				Int("pendingBattles", st.PendingBattles).
				Msg("Status")
		}
	}
}

// Stop stops the status monitor and waits for the goroutine to exit.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	close(s.stopChan)
	done := s.done
	s.mu.Unlock()
	<-done
}
