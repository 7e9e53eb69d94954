package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abdulazizuv1/yes-english-center-sub001/internal/scoring"
)

const keyPrefix = "ielts:test"

// QuestionKey is the cache key of the extracted questions of a test
func QuestionKey(testID uint) string {
	return fmt.Sprintf("%s:%d:questions", keyPrefix, testID)
}

// QuestionCache keeps the extracted question list of each test so repeated
// submissions against the same test skip re-walking the document.
type QuestionCache struct {
	cache CacheService
	ttl   time.Duration
}

func NewQuestionCache(cache CacheService, ttl time.Duration) *QuestionCache {
	return &QuestionCache{cache: cache, ttl: ttl}
}

// Get returns the cached questions. ok is false on a miss or when the cache
// is unavailable.
func (c *QuestionCache) Get(ctx context.Context, testID uint) ([]scoring.CanonicalQuestion, bool, error) {
	if c == nil || c.cache == nil {
		return nil, false, nil
	}
	var questions []scoring.CanonicalQuestion
	err := c.cache.Get(ctx, QuestionKey(testID), &questions)
	if errors.Is(err, ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return questions, true, nil
}

func (c *QuestionCache) Set(ctx context.Context, testID uint, questions []scoring.CanonicalQuestion) error {
	if c == nil || c.cache == nil {
		return nil
	}
	return c.cache.Set(ctx, QuestionKey(testID), questions, c.ttl)
}

func (c *QuestionCache) Invalidate(ctx context.Context, testID uint) error {
	if c == nil || c.cache == nil {
		return nil
	}
	return c.cache.Delete(ctx, QuestionKey(testID))
}

// InvalidateAll drops the cached questions of every test
func (c *QuestionCache) InvalidateAll(ctx context.Context) error {
	if c == nil || c.cache == nil {
		return nil
	}
	return c.cache.DeletePattern(ctx, keyPrefix+":*:questions")
}
