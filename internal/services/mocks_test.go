package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/abdulazizuv1/yes-english-center-sub001/internal/cache"
	"github.com/abdulazizuv1/yes-english-center-sub001/internal/config"
	"github.com/abdulazizuv1/yes-english-center-sub001/internal/models"
	"github.com/abdulazizuv1/yes-english-center-sub001/internal/repositories"
	"github.com/abdulazizuv1/yes-english-center-sub001/internal/scoring"
)

// ===== REPOSITORY MOCKS =====

type MockTestRepository struct {
	mock.Mock
}

func (m *MockTestRepository) Create(ctx context.Context, test *models.Test) error {
	return m.Called(ctx, test).Error(0)
}

func (m *MockTestRepository) GetByID(ctx context.Context, id uint) (*models.Test, error) {
	args := m.Called(ctx, id)
	if test, ok := args.Get(0).(*models.Test); ok {
		return test, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTestRepository) Update(ctx context.Context, test *models.Test) error {
	return m.Called(ctx, test).Error(0)
}

func (m *MockTestRepository) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockTestRepository) List(ctx context.Context, filters repositories.TestFilters) ([]*models.Test, int64, error) {
	args := m.Called(ctx, filters)
	tests, _ := args.Get(0).([]*models.Test)
	return tests, args.Get(1).(int64), args.Error(2)
}

func (m *MockTestRepository) ExistsByTitle(ctx context.Context, title string, module models.TestModule, excludeID *uint) (bool, error) {
	args := m.Called(ctx, title, module, excludeID)
	return args.Bool(0), args.Error(1)
}

type MockResultRepository struct {
	mock.Mock
}

func (m *MockResultRepository) Create(ctx context.Context, result *models.Result) error {
	return m.Called(ctx, result).Error(0)
}

func (m *MockResultRepository) GetByID(ctx context.Context, id uint) (*models.Result, error) {
	args := m.Called(ctx, id)
	if result, ok := args.Get(0).(*models.Result); ok {
		return result, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockResultRepository) GetByIDWithTest(ctx context.Context, id uint) (*models.Result, error) {
	args := m.Called(ctx, id)
	if result, ok := args.Get(0).(*models.Result); ok {
		return result, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockResultRepository) List(ctx context.Context, filters repositories.ResultFilters) ([]*models.Result, int64, error) {
	args := m.Called(ctx, filters)
	results, _ := args.Get(0).([]*models.Result)
	return results, args.Get(1).(int64), args.Error(2)
}

func (m *MockResultRepository) GetByStudent(ctx context.Context, studentID string, filters repositories.ResultFilters) ([]*models.Result, int64, error) {
	args := m.Called(ctx, studentID, filters)
	results, _ := args.Get(0).([]*models.Result)
	return results, args.Get(1).(int64), args.Error(2)
}

func (m *MockResultRepository) GetStudentStats(ctx context.Context, studentID string) (*repositories.StudentStats, error) {
	args := m.Called(ctx, studentID)
	stats, _ := args.Get(0).(*repositories.StudentStats)
	return stats, args.Error(1)
}

// MockRepository runs transactions against itself
type MockRepository struct {
	tests   *MockTestRepository
	results *MockResultRepository
}

func newMockRepository() *MockRepository {
	return &MockRepository{tests: &MockTestRepository{}, results: &MockResultRepository{}}
}

func (m *MockRepository) Test() repositories.TestRepository     { return m.tests }
func (m *MockRepository) Result() repositories.ResultRepository { return m.results }

func (m *MockRepository) Transaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}

// ===== CACHE FAKE =====

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}}
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = data
	m.sets++
	return nil
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (m *memoryCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memoryCache) DeletePattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = map[string][]byte{}
	return nil
}

func (m *memoryCache) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

// ===== FIXTURES =====

const listeningContent = `{
  "title": "Listening Mock 1",
  "sections": [{
    "title": "Section 1",
    "content": [
      {"type": "text", "text": "Complete the notes."},
      {"type": "question", "questionId": "q1", "format": "gap-fill", "correctAnswer": "Seaview"},
      {"type": "question", "questionId": "q2", "format": "gap-fill", "correctAnswer": "colour/color"},
      {"type": "question", "questionId": "q3", "format": "multiple-choice", "correctAnswer": "B",
       "options": [{"label": "A", "text": "Monday"}, {"label": "B", "text": "Tuesday"}]}
    ]
  }, {
    "title": "Section 2",
    "content": [
      {"type": "question", "questionId": "q11", "format": "gap-fill", "correctAnswer": "river"}
    ]
  }]
}`

const listeningAnswers = `{"q1": "seaview", "q2": "color", "q3": "A", "q11": "River"}`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testScoringConfig() config.ScoringConfig {
	return config.ScoringConfig{
		ReadingText:   scoring.NormalizeStemmed,
		ListeningText: scoring.NormalizeStrict,
		BandRounding:  scoring.RoundLegacy,
	}
}

func listeningTest(id uint) *models.Test {
	return &models.Test{
		ID:      id,
		Title:   "Listening Mock 1",
		Module:  models.ModuleListening,
		Content: []byte(listeningContent),
	}
}
