package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter ограничивает частоту запросов по произвольному ключу
// (обычно IP-адрес клиента).
type Limiter interface {
	// Allow сообщает, разрешён ли очередной запрос для ключа.
	Allow(ctx context.Context, key string) (bool, error)
}

// redisLimiter — fixed-window лимитер поверх Redis. Счётчик окна живёт
// в Redis, поэтому лимит общий для всех экземпляров сервиса.
type redisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
}

// NewRedisLimiter создаёт лимитер с окном window и порогом limit запросов.
func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) Limiter {
	return &redisLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: "ratelimit:",
	}
}

func (l *redisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	windowKey := fmt.Sprintf("%s%s:%d", l.prefix, key, time.Now().Unix()/int64(l.window.Seconds()))

	pipe := l.client.TxPipeline()
	count := pipe.Incr(ctx, windowKey)
	pipe.Expire(ctx, windowKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("ratelimit incr: %w", err)
	}

	return count.Val() <= int64(l.limit), nil
}

// memoryLimiter — fixed-window лимитер в памяти процесса. Используется,
// когда Redis не сконфигурирован; лимит действует в рамках одного экземпляра.
type memoryLimiter struct {
	mu     sync.Mutex
	counts map[string]int
	window int64

	limit     int
	windowDur time.Duration
	now       func() time.Time
}

// NewMemoryLimiter создаёт in-process лимитер с окном window и порогом limit.
func NewMemoryLimiter(limit int, window time.Duration) Limiter {
	return &memoryLimiter{
		counts:    make(map[string]int),
		limit:     limit,
		windowDur: window,
		now:       time.Now,
	}
}

func (l *memoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	window := l.now().Unix() / int64(l.windowDur.Seconds())
	if window != l.window {
		l.window = window
		l.counts = make(map[string]int)
	}

	l.counts[key]++
	return l.counts[key] <= l.limit, nil
}
