package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quiz-engine/internal/domain"
)

// Provider fetches quiz content from the upstream source on cache miss.
type Provider interface {
	FetchQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	Ping(ctx context.Context) error
}

// QuizCache stores whole quiz snapshots as JSON values in Redis:
// SET quiz:snapshot:{quizID} {json}. Snapshots carry prompts,
// canonical answers, and explanations, so the full document is cached
// rather than a per-question hash.
type QuizCache struct {
	client   *redis.Client
	provider Provider
	ttl      time.Duration
	sf       singleflight.Group
}

func NewQuizCache(client *redis.Client, provider Provider, ttl time.Duration) *QuizCache {
	return &QuizCache{client: client, provider: provider, ttl: ttl}
}

func (c *QuizCache) FetchQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	key := c.key(quizID)

	if quiz, ok := c.lookup(ctx, key); ok {
		return quiz, nil
	}

	result, err, _ := c.sf.Do(quizID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if quiz, ok := c.lookup(ctx, key); ok {
			return quiz, nil
		}

		quiz, err := c.provider.FetchQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}

		if data, err := json.Marshal(quiz); err == nil {
			// Best effort; a failed cache write only costs a re-fetch.
			_ = c.client.Set(ctx, key, data, ttlWithJitter(c.ttl)).Err()
		}
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

// Ping reports upstream reachability; Redis failures degrade to cache
// misses rather than provider outages.
func (c *QuizCache) Ping(ctx context.Context) error {
	return c.provider.Ping(ctx)
}

func (c *QuizCache) lookup(ctx context.Context, key string) (domain.Quiz, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return domain.Quiz{}, false
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(data, &quiz); err != nil {
		return domain.Quiz{}, false
	}
	return quiz, true
}

func (c *QuizCache) key(quizID string) string {
	return "quiz:snapshot:" + quizID
}

// ttlWithJitter adds up to 10% jitter to spread expirations.
func ttlWithJitter(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 0
	}
	jitterMax := int64(ttl) / 10
	return ttl + time.Duration(rand.Int63n(jitterMax+1))
}
