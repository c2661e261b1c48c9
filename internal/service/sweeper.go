package service

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultSweepInterval = 1 * time.Minute

// SessionSweeper periodically drops idle sessions.
type SessionSweeper struct {
	sessions *SessionManager
	logger   *zap.Logger

	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewSessionSweeper(sessions *SessionManager, logger *zap.Logger) *SessionSweeper {
	return &SessionSweeper{
		sessions: sessions,
		logger:   logger,
		interval: defaultSweepInterval,
		stopCh:   make(chan struct{}),
	}
}

func (s *SessionSweeper) SetInterval(d time.Duration) {
	if d > 0 {
		s.interval = d
	}
}

// Start runs the sweeper on a periodic schedule in a background goroutine.
func (s *SessionSweeper) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("session sweeper started", zap.Duration("interval", s.interval))

		for {
			select {
			case <-ticker.C:
				s.run()
			case <-s.stopCh:
				s.logger.Info("session sweeper stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the sweeper.
func (s *SessionSweeper) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

func (s *SessionSweeper) run() {
	if removed := s.sessions.Sweep(); removed > 0 {
		s.logger.Info("swept idle sessions",
			zap.Int("count", removed),
			zap.Int("remaining", s.sessions.Len()))
	}
}
