package health

import (
	"context"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/mustore/internal/domain"
)

// Pinger проверяет доступность внешнего хранилища.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DatabaseChecker проверяет доступность базы данных.
type DatabaseChecker struct {
	name   string
	pinger Pinger
}

// NewDatabaseChecker создаёт проверку подключения к базе.
func NewDatabaseChecker(name string, pinger Pinger) *DatabaseChecker {
	return &DatabaseChecker{name: name, pinger: pinger}
}

func (c *DatabaseChecker) Check() Check {
	start := time.Now()
	err := c.pinger.Ping(context.Background())
	duration := time.Since(start)

	if err != nil {
		return Check{
			Name:       c.name,
			Status:     StatusUnhealthy,
			Message:    err.Error(),
			DurationMs: duration.Milliseconds(),
		}
	}
	return Check{
		Name:       c.name,
		Status:     StatusHealthy,
		DurationMs: duration.Milliseconds(),
	}
}

// OutboxBacklogChecker следит за отставанием публикации событий заказов.
// Растущий backlog означает, что воркер outbox не успевает или Kafka недоступна.
type OutboxBacklogChecker struct {
	outbox     domain.OutboxRepository
	maxPending int
	maxAge     time.Duration
	now        func() time.Time
}

// NewOutboxBacklogChecker создаёт проверку backlog transactional outbox.
func NewOutboxBacklogChecker(outbox domain.OutboxRepository, maxPending int, maxAge time.Duration) *OutboxBacklogChecker {
	return &OutboxBacklogChecker{
		outbox:     outbox,
		maxPending: maxPending,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

func (c *OutboxBacklogChecker) Check() Check {
	start := time.Now()
	stats, err := c.outbox.Stats()
	duration := time.Since(start)

	if err != nil {
		return Check{
			Name:       "outbox",
			Status:     StatusUnhealthy,
			Message:    err.Error(),
			DurationMs: duration.Milliseconds(),
		}
	}

	status := StatusHealthy
	message := ""
	if c.maxPending > 0 && stats.PendingCount > c.maxPending {
		status = StatusDegraded
		message = fmt.Sprintf("%d pending events", stats.PendingCount)
	}
	if c.maxAge > 0 && !stats.OldestPendingAt.IsZero() {
		if age := c.now().Sub(stats.OldestPendingAt); age > c.maxAge {
			status = StatusDegraded
			message = fmt.Sprintf("oldest pending event is %s old", age.Truncate(time.Second))
		}
	}

	return Check{
		Name:       "outbox",
		Status:     status,
		Message:    message,
		DurationMs: duration.Milliseconds(),
	}
}
