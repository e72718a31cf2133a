package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/vladislavdragonenkov/mustore/internal/domain"
)

// defaultTokenTTL — срок жизни выданного токена.
const defaultTokenTTL = 7 * 24 * time.Hour

// ErrInvalidToken — токен не прошёл проверку подписи или истёк.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims — полезная нагрузка JWT.
type Claims struct {
	UserID string      `json:"uid"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// RegisterRequest — данные регистрации нового пользователя.
type RegisterRequest struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// Session — результат успешной аутентификации.
type Session struct {
	User  domain.User
	Token string
}

// Service отвечает за регистрацию, вход и проверку токенов.
type Service struct {
	users    domain.UserRepository
	secret   []byte
	tokenTTL time.Duration
	logger   *log.Entry
	now      func() time.Time
}

// Option настраивает Service.
type Option func(*Service)

// WithLogger задаёт logger сервиса.
func WithLogger(logger *log.Entry) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTokenTTL задаёт срок жизни токена.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.tokenTTL = ttl
	}
}

// WithClock задаёт источник времени (для тестов).
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService создаёт сервис аутентификации с симметричным ключом secret.
func NewService(users domain.UserRepository, secret string, options ...Option) *Service {
	s := &Service{
		users:    users,
		secret:   []byte(secret),
		tokenTTL: defaultTokenTTL,
		logger:   log.WithField("component", "auth-service"),
		now:      time.Now,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Register создаёт пользователя и сразу выдаёт токен.
func (s *Service) Register(req RegisterRequest) (Session, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Role:         domain.RoleCustomer,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(user); err != nil {
		return Session{}, err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return Session{}, err
	}

	s.logger.WithField("user_id", user.ID).Info("user registered")
	return Session{User: user, Token: token}, nil
}

// Login проверяет пару email/пароль и выдаёт токен.
// Неизвестный email и неверный пароль неразличимы для клиента.
func (s *Service) Login(email, password string) (Session, error) {
	user, err := s.users.GetByEmail(strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, domain.ErrUserNotFound) {
		return Session{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if !user.IsActive {
		return Session{}, domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return Session{}, domain.ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return Session{}, err
	}
	return Session{User: user, Token: token}, nil
}

// GetUser возвращает пользователя по идентификатору.
func (s *Service) GetUser(id string) (domain.User, error) {
	return s.users.Get(id)
}

func (s *Service) issueToken(user domain.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken валидирует токен и возвращает его claims.
func (s *Service) ParseToken(tokenString string) (Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	return *claims, nil
}
