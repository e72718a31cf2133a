package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/mustore/internal/domain"
)

type stubPinger struct {
	err error
}

func (p *stubPinger) Ping(context.Context) error {
	return p.err
}

func TestDatabaseChecker(t *testing.T) {
	checker := NewDatabaseChecker("postgres", &stubPinger{})

	check := checker.Check()
	if check.Status != StatusHealthy {
		t.Errorf("expected status healthy, got %s", check.Status)
	}
	if check.Name != "postgres" {
		t.Errorf("expected name postgres, got %s", check.Name)
	}
}

func TestDatabaseChecker_Error(t *testing.T) {
	checker := NewDatabaseChecker("postgres", &stubPinger{err: errors.New("connection refused")})

	check := checker.Check()
	if check.Status != StatusUnhealthy {
		t.Errorf("expected status unhealthy, got %s", check.Status)
	}
	if check.Message != "connection refused" {
		t.Errorf("expected message 'connection refused', got %s", check.Message)
	}
}

type stubOutbox struct {
	stats domain.OutboxStats
	err   error
}

func (s *stubOutbox) Enqueue(msg domain.OutboxMessage) (domain.OutboxMessage, error) {
	return msg, nil
}

func (s *stubOutbox) PullPending(int) ([]domain.OutboxMessage, error) {
	return nil, nil
}

func (s *stubOutbox) Stats() (domain.OutboxStats, error) {
	return s.stats, s.err
}

func (s *stubOutbox) MarkSent(string) error   { return nil }
func (s *stubOutbox) MarkFailed(string) error { return nil }

func TestOutboxBacklogChecker(t *testing.T) {
	checker := NewOutboxBacklogChecker(&stubOutbox{
		stats: domain.OutboxStats{PendingCount: 2},
	}, 100, time.Hour)

	check := checker.Check()
	if check.Status != StatusHealthy {
		t.Errorf("expected status healthy, got %s", check.Status)
	}
}

func TestOutboxBacklogChecker_DegradedByCount(t *testing.T) {
	checker := NewOutboxBacklogChecker(&stubOutbox{
		stats: domain.OutboxStats{PendingCount: 500},
	}, 100, 0)

	check := checker.Check()
	if check.Status != StatusDegraded {
		t.Errorf("expected status degraded, got %s", check.Status)
	}
}

func TestOutboxBacklogChecker_DegradedByAge(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	checker := NewOutboxBacklogChecker(&stubOutbox{
		stats: domain.OutboxStats{
			PendingCount:    1,
			OldestPendingAt: now.Add(-2 * time.Hour),
		},
	}, 100, time.Hour)
	checker.now = func() time.Time { return now }

	check := checker.Check()
	if check.Status != StatusDegraded {
		t.Errorf("expected status degraded, got %s", check.Status)
	}
}

func TestOutboxBacklogChecker_StatsError(t *testing.T) {
	checker := NewOutboxBacklogChecker(&stubOutbox{err: errors.New("db down")}, 100, time.Hour)

	check := checker.Check()
	if check.Status != StatusUnhealthy {
		t.Errorf("expected status unhealthy, got %s", check.Status)
	}
}
