package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/mustore/internal/domain"
)

// outboxRepositoryPostgres — реализация OutboxRepository поверх PostgreSQL.
type outboxRepositoryPostgres struct {
	s *Store
}

// NewOutboxRepository возвращает репозиторий transactional outbox.
func NewOutboxRepository(s *Store) domain.OutboxRepository {
	return &outboxRepositoryPostgres{s: s}
}

func (r *outboxRepositoryPostgres) Enqueue(msg domain.OutboxMessage) (domain.OutboxMessage, error) {
	ctx, cancel := opCtx()
	defer cancel()

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if _, err := r.s.db.ExecContext(ctx, `
		INSERT INTO outbox_messages (id, aggregate_type, aggregate_id, event_type, payload)
		VALUES ($1, $2, $3, $4, $5)`,
		msg.ID, msg.AggregateType, msg.AggregateID, msg.EventType, msg.Payload,
	); err != nil {
		return domain.OutboxMessage{}, fmt.Errorf("enqueue outbox message: %w", err)
	}
	return msg, nil
}

// PullPending забирает порцию неопубликованных событий в порядке создания.
// Выборка не блокирует строки: одно событие может попасть к нескольким
// воркерам, дубликаты гасит идемпотентный producer и ключ партиционирования.
func (r *outboxRepositoryPostgres) PullPending(limit int) ([]domain.OutboxMessage, error) {
	if limit <= 0 {
		limit = 50
	}

	ctx, cancel := opCtx()
	defer cancel()

	rows, err := r.s.db.QueryContext(ctx, `
		SELECT id, aggregate_type, aggregate_id, event_type, payload
		FROM outbox_messages
		WHERE status = 'pending'
		ORDER BY created_at, id
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending outbox messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	messages := make([]domain.OutboxMessage, 0, limit)
	for rows.Next() {
		var msg domain.OutboxMessage
		if err := rows.Scan(&msg.ID, &msg.AggregateType, &msg.AggregateID, &msg.EventType, &msg.Payload); err != nil {
			return nil, fmt.Errorf("scan outbox message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox messages: %w", err)
	}
	return messages, nil
}

func (r *outboxRepositoryPostgres) Stats() (domain.OutboxStats, error) {
	ctx, cancel := opCtx()
	defer cancel()

	var stats domain.OutboxStats
	var oldest sql.NullTime
	err := r.s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), MIN(created_at)
		FROM outbox_messages
		WHERE status = 'pending'`,
	).Scan(&stats.PendingCount, &oldest)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return domain.OutboxStats{}, fmt.Errorf("query outbox stats: %w", err)
	}
	if oldest.Valid {
		stats.OldestPendingAt = oldest.Time
	}
	return stats, nil
}

func (r *outboxRepositoryPostgres) MarkSent(id string) error {
	return r.setStatus(id, "sent", "")
}

func (r *outboxRepositoryPostgres) MarkFailed(id string) error {
	return r.setStatus(id, "failed", "publish failed")
}

func (r *outboxRepositoryPostgres) setStatus(id, status, lastError string) error {
	ctx, cancel := opCtx()
	defer cancel()

	if _, err := r.s.db.ExecContext(ctx, `
		UPDATE outbox_messages
		SET status = $2, attempts = attempts + 1, last_error = $3, updated_at = now()
		WHERE id::text = $1`,
		id, status, lastError,
	); err != nil {
		return fmt.Errorf("mark outbox message %s as %s: %w", id, status, err)
	}
	return nil
}

var _ domain.OutboxRepository = (*outboxRepositoryPostgres)(nil)
