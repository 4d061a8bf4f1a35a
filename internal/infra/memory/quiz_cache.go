package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quiz-engine/internal/domain"
)

// Provider fetches quiz content from the upstream source on cache miss.
type Provider interface {
	FetchQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	Ping(ctx context.Context) error
}

// QuizCache keeps quiz snapshots with a TTL so session starts against
// the same quiz do not hammer the provider.
type QuizCache struct {
	provider Provider
	ttl      time.Duration
	clock    func() time.Time
	sf       singleflight.Group

	mu    sync.RWMutex
	cache map[string]cachedQuiz
}

type cachedQuiz struct {
	quiz      domain.Quiz
	expiresAt time.Time
}

func NewQuizCache(provider Provider, ttl time.Duration) *QuizCache {
	return &QuizCache{
		provider: provider,
		ttl:      ttl,
		clock:    time.Now,
		cache:    make(map[string]cachedQuiz),
	}
}

func (c *QuizCache) FetchQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[quizID]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.quiz, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(quizID, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[quizID]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.quiz, nil
		}
		c.mu.RUnlock()

		quiz, err := c.provider.FetchQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}

		c.mu.Lock()
		c.cache[quizID] = cachedQuiz{
			quiz:      quiz,
			expiresAt: now.Add(ttlWithJitter(c.ttl)),
		}
		c.mu.Unlock()
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

// Ping reports upstream reachability; the cache itself cannot fail.
func (c *QuizCache) Ping(ctx context.Context) error {
	return c.provider.Ping(ctx)
}

// ttlWithJitter adds up to 10% jitter to spread expirations.
func ttlWithJitter(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 0
	}
	jitterMax := int64(ttl) / 10
	return ttl + time.Duration(rand.Int63n(jitterMax+1))
}
