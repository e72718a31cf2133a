package memory

import (
	"strings"
	"time"

	"github.com/vladislavdragonenkov/mustore/internal/domain"
)

// userRepositoryInMemory — in-memory реализация UserRepository.
type userRepositoryInMemory struct {
	s *Store
}

// NewUserRepository возвращает in-memory репозиторий пользователей.
func NewUserRepository(s *Store) domain.UserRepository {
	return &userRepositoryInMemory{s: s}
}

func (r *userRepositoryInMemory) Create(user domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, exists := r.s.userByEmail[email]; exists {
		return domain.ErrEmailTaken
	}

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	r.s.users[user.ID] = user
	r.s.userByEmail[email] = user.ID
	return nil
}

func (r *userRepositoryInMemory) Get(id string) (domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (r *userRepositoryInMemory) GetByEmail(email string) (domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.userByEmail[strings.ToLower(email)]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return r.s.users[id], nil
}

var _ domain.UserRepository = (*userRepositoryInMemory)(nil)
