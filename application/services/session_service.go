package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"workflowbuilder/application/ports"
	"workflowbuilder/application/session"
)

// SessionService opens, finds and expires editor sessions
type SessionService struct {
	repo    session.Repository
	deps    session.Deps
	ttl     time.Duration
	logger  *zap.Logger
	metrics ports.Metrics
	now     func() time.Time
}

// NewSessionService creates a new session service
func NewSessionService(repo session.Repository, deps session.Deps, ttl time.Duration, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Logger == nil {
		deps.Logger = logger
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &SessionService{
		repo:    repo,
		deps:    deps,
		ttl:     ttl,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

// Create opens a new session. An empty name uses the default workflow name.
func (s *SessionService) Create(ctx context.Context, name string) (*session.Session, error) {
	sess := session.New(strings.TrimSpace(name), s.deps)
	if err := s.repo.Save(ctx, sess); err != nil {
		sess.Close()
		return nil, err
	}
	s.logger.Info("Session opened", zap.String("session_id", sess.ID()))
	s.reportCount(ctx)
	return sess, nil
}

// Get finds an open session
func (s *SessionService) Get(ctx context.Context, id string) (*session.Session, error) {
	return s.repo.Get(ctx, id)
}

// Do runs fn against one session while holding its lock
func (s *SessionService) Do(ctx context.Context, id string, fn func(e session.Editor) error) error {
	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	return sess.Do(fn)
}

// Close ends a session
func (s *SessionService) Close(ctx context.Context, id string) error {
	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	s.closeSession(ctx, sess, "closed")
	return nil
}

// List summarises the open sessions
func (s *SessionService) List(ctx context.Context) ([]session.Summary, error) {
	sessions, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]session.Summary, 0, len(sessions))
	for _, sess := range sessions {
		sum, err := sess.Summarize()
		if err != nil {
			// closed between listing and locking
			continue
		}
		out = append(out, sum)
	}
	return out, nil
}

// Sweep closes sessions idle longer than the TTL and returns how many
func (s *SessionService) Sweep(ctx context.Context) int {
	sessions, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list sessions for sweep", zap.Error(err))
		return 0
	}
	now := s.now()
	expired := 0
	for _, sess := range sessions {
		if sess.Expired(now, s.ttl) {
			s.closeSession(ctx, sess, "expired")
			expired++
		}
	}
	return expired
}

// Run sweeps on every tick until ctx is done
func (s *SessionService) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.Sweep(ctx); n > 0 {
				s.logger.Info("Expired idle sessions", zap.Int("count", n))
			}
		}
	}
}

// Shutdown closes every session
func (s *SessionService) Shutdown(ctx context.Context) {
	sessions, err := s.repo.List(ctx)
	if err != nil {
		return
	}
	for _, sess := range sessions {
		s.closeSession(ctx, sess, "shutdown")
	}
}

func (s *SessionService) closeSession(ctx context.Context, sess *session.Session, reason string) {
	sess.Close()
	if err := s.repo.Delete(ctx, sess.ID()); err != nil {
		s.logger.Error("Failed to delete session", zap.String("session_id", sess.ID()), zap.Error(err))
	}
	s.logger.Info("Session closed", zap.String("session_id", sess.ID()), zap.String("reason", reason))
	s.reportCount(ctx)
}

func (s *SessionService) reportCount(ctx context.Context) {
	if n, err := s.repo.Count(ctx); err == nil {
		s.metrics.SetActiveSessions(n)
	}
}
