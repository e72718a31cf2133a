package memory

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/mustore/internal/domain"
)

// outboxRepositoryInMemory — простое in-memory хранилище для transactional outbox.
type outboxRepositoryInMemory struct {
	s *Store
}

// NewOutboxRepository возвращает in-memory реализацию outbox.
func NewOutboxRepository(s *Store) domain.OutboxRepository {
	return &outboxRepositoryInMemory{s: s}
}

// Enqueue сохраняет событие со статусом `pending` и возвращает его идентификатор.
func (r *outboxRepositoryInMemory) Enqueue(msg domain.OutboxMessage) (domain.OutboxMessage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	r.s.outbox[msg.ID] = &outboxRecord{msg: msg, status: "pending", createdAt: now, updatedAt: now}
	return msg, nil
}

// PullPending возвращает до limit сообщений со статусом `pending`.
func (r *outboxRepositoryInMemory) PullPending(limit int) ([]domain.OutboxMessage, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}

	records := make([]*outboxRecord, 0, len(r.s.outbox))
	for _, record := range r.s.outbox {
		if record.status == "pending" {
			records = append(records, record)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].createdAt.Equal(records[j].createdAt) {
			return records[i].createdAt.Before(records[j].createdAt)
		}
		return records[i].msg.ID < records[j].msg.ID
	})

	result := make([]domain.OutboxMessage, 0, limit)
	for _, record := range records {
		if len(result) >= limit {
			break
		}
		result = append(result, record.msg)
	}
	return result, nil
}

// Stats возвращает размер и возраст backlog.
func (r *outboxRepositoryInMemory) Stats() (domain.OutboxStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var stats domain.OutboxStats
	for _, record := range r.s.outbox {
		if record.status != "pending" {
			continue
		}
		stats.PendingCount++
		if stats.OldestPendingAt.IsZero() || record.createdAt.Before(stats.OldestPendingAt) {
			stats.OldestPendingAt = record.createdAt
		}
	}
	return stats, nil
}

func (r *outboxRepositoryInMemory) MarkSent(id string) error {
	return r.markStatus(id, "sent")
}

func (r *outboxRepositoryInMemory) MarkFailed(id string) error {
	return r.markStatus(id, "failed")
}

func (r *outboxRepositoryInMemory) markStatus(id, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	record, ok := r.s.outbox[id]
	if !ok {
		return domain.ErrOutboxPublish
	}
	record.status = status
	record.updatedAt = time.Now().UTC()
	return nil
}

var _ domain.OutboxRepository = (*outboxRepositoryInMemory)(nil)
