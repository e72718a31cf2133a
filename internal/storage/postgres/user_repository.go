package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/vladislavdragonenkov/mustore/internal/domain"
)

// userRepositoryPostgres — реализация UserRepository поверх PostgreSQL.
type userRepositoryPostgres struct {
	s *Store
}

// NewUserRepository возвращает репозиторий пользователей.
func NewUserRepository(s *Store) domain.UserRepository {
	return &userRepositoryPostgres{s: s}
}

func (r *userRepositoryPostgres) Create(user domain.User) error {
	ctx, cancel := opCtx()
	defer cancel()

	_, err := r.s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, first_name, last_name, phone, role, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.ID, strings.ToLower(user.Email), user.PasswordHash,
		user.FirstName, user.LastName, user.Phone, user.Role, user.IsActive,
	)
	if isUniqueViolation(err, "users_email_key") {
		return domain.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

const userColumns = `
	id, email, password_hash, first_name, last_name, phone, role, is_active,
	created_at, updated_at`

func scanUser(row *sql.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.Phone, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	return u, err
}

func (r *userRepositoryPostgres) Get(id string) (domain.User, error) {
	ctx, cancel := opCtx()
	defer cancel()

	row := r.s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id::text = $1", id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user %s: %w", id, err)
	}
	return u, nil
}

func (r *userRepositoryPostgres) GetByEmail(email string) (domain.User, error) {
	ctx, cancel := opCtx()
	defer cancel()

	row := r.s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = $1", strings.ToLower(email))
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

var _ domain.UserRepository = (*userRepositoryPostgres)(nil)
