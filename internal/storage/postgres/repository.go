package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// opTimeout ограничивает длительность одиночной операции репозитория.
const opTimeout = 5 * time.Second

func opCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), opTimeout)
}

const pgUniqueViolation = "23505"

// isUniqueViolation сообщает, что ошибка вызвана нарушением уникального
// ограничения с указанным именем (пустое имя — любое ограничение).
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	if pgErr.Code != pgUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
