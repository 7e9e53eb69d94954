package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/abdulazizuv1/yes-english-center-sub001/internal/cache"
	"github.com/abdulazizuv1/yes-english-center-sub001/internal/models"
	"github.com/abdulazizuv1/yes-english-center-sub001/internal/repositories"
	"github.com/abdulazizuv1/yes-english-center-sub001/internal/validator"
)

func newTestTestService(repo *MockRepository, store *memoryCache) TestService {
	var questions *cache.QuestionCache
	if store != nil {
		questions = cache.NewQuestionCache(store, 0)
	}
	return NewTestService(repo, questions, validator.New(), testLogger())
}

func TestTestService_Create(t *testing.T) {
	repo := newMockRepository()
	store := newMemoryCache()
	svc := newTestTestService(repo, store)
	ctx := context.Background()

	repo.tests.On("ExistsByTitle", ctx, "Listening Mock 1", models.ModuleListening, (*uint)(nil)).Return(false, nil)
	repo.tests.On("Create", ctx, mock.AnythingOfType("*models.Test")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.Test).ID = 7
		}).
		Return(nil)

	resp, err := svc.Create(ctx, &CreateTestRequest{
		Title:   "  Listening Mock 1 ",
		Module:  "Listening",
		Content: json.RawMessage(listeningContent),
	}, "examiner-1")
	require.NoError(t, err)

	assert.Equal(t, uint(7), resp.ID)
	assert.Equal(t, "Listening Mock 1", resp.Title)
	assert.Equal(t, "listening", resp.Module)
	assert.Equal(t, 4, resp.QuestionsCount)
	assert.Equal(t, "examiner-1", resp.CreatedBy)
	assert.JSONEq(t, listeningContent, string(resp.Content))
	assert.True(t, store.has(cache.QuestionKey(7)), "questions are cached on create")
	repo.tests.AssertExpectations(t)
}

func TestTestService_CreateRejectsDuplicatesAndBadContent(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate title", func(t *testing.T) {
		repo := newMockRepository()
		repo.tests.On("ExistsByTitle", ctx, "Mock", models.ModuleListening, (*uint)(nil)).Return(true, nil)

		_, err := newTestTestService(repo, nil).Create(ctx, &CreateTestRequest{
			Title: "Mock", Module: "listening", Content: json.RawMessage(listeningContent),
		}, "")
		assert.ErrorIs(t, err, ErrTestDuplicateTitle)
		assert.True(t, IsConflict(err))
		repo.tests.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("reading without passages", func(t *testing.T) {
		repo := newMockRepository()
		_, err := newTestTestService(repo, nil).Create(ctx, &CreateTestRequest{
			Title: "Mock", Module: "reading", Content: json.RawMessage(`{"title": "empty"}`),
		}, "")
		var verrs ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Equal(t, "content.passages", verrs[0].Field)
	})

	t.Run("content is not an object", func(t *testing.T) {
		repo := newMockRepository()
		_, err := newTestTestService(repo, nil).Create(ctx, &CreateTestRequest{
			Title: "Mock", Module: "listening", Content: json.RawMessage(`[1, 2]`),
		}, "")
		assert.True(t, IsValidation(err))
	})

	t.Run("missing title", func(t *testing.T) {
		repo := newMockRepository()
		_, err := newTestTestService(repo, nil).Create(ctx, &CreateTestRequest{
			Module: "listening", Content: json.RawMessage(listeningContent),
		}, "")
		var verrs ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Equal(t, "title", verrs[0].Field)
	})
}

func TestTestService_QuestionsUsesCache(t *testing.T) {
	repo := newMockRepository()
	store := newMemoryCache()
	svc := newTestTestService(repo, store)
	ctx := context.Background()

	broken := listeningTest(3)
	broken.Content = []byte(`not json`)
	repo.tests.On("GetByID", ctx, uint(3)).Return(listeningTest(3), nil).Once()
	repo.tests.On("GetByID", ctx, uint(3)).Return(broken, nil).Once()

	test, questions, err := svc.Questions(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, uint(3), test.ID)
	require.Len(t, questions, 4)
	assert.Equal(t, 1, store.sets)

	// The second load never decodes the stored content
	_, cached, err := svc.Questions(ctx, 3)
	require.NoError(t, err)
	require.Len(t, cached, 4)
	for i := range questions {
		assert.Equal(t, questions[i].QID, cached[i].QID)
		assert.Equal(t, questions[i].CorrectAnswer, cached[i].CorrectAnswer)
	}
	assert.Equal(t, 1, store.sets)
	repo.tests.AssertExpectations(t)
}

func TestTestService_QuestionsErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		repo := newMockRepository()
		repo.tests.On("GetByID", ctx, uint(9)).Return(nil, repositories.ErrNotFound)

		_, _, err := newTestTestService(repo, nil).Questions(ctx, 9)
		assert.ErrorIs(t, err, ErrTestNotFound)
		assert.True(t, IsNotFound(err))
	})

	t.Run("corrupt content", func(t *testing.T) {
		repo := newMockRepository()
		broken := listeningTest(4)
		broken.Content = []byte(`{"sections": [`)
		repo.tests.On("GetByID", ctx, uint(4)).Return(broken, nil)

		_, _, err := newTestTestService(repo, nil).Questions(ctx, 4)
		assert.ErrorIs(t, err, ErrTestContentCorrupt)
	})

	t.Run("repository failure", func(t *testing.T) {
		repo := newMockRepository()
		repo.tests.On("GetByID", ctx, uint(5)).Return(nil, errors.New("connection reset"))

		_, _, err := newTestTestService(repo, nil).Questions(ctx, 5)
		require.Error(t, err)
		assert.False(t, IsNotFound(err))
	})
}

func TestTestService_UpdateInvalidatesCache(t *testing.T) {
	repo := newMockRepository()
	store := newMemoryCache()
	svc := newTestTestService(repo, store)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, cache.QuestionKey(3), []string{"stale"}, 0))

	repo.tests.On("GetByID", ctx, uint(3)).Return(listeningTest(3), nil)
	repo.tests.On("Update", ctx, mock.AnythingOfType("*models.Test")).Return(nil)

	newContent := `{"sections": [{"content": [
	  {"type": "question", "questionId": "q1", "format": "gap-fill", "correctAnswer": "harbour"}
	]}]}`
	resp, err := svc.Update(ctx, 3, &UpdateTestRequest{Content: json.RawMessage(newContent)})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.QuestionsCount)
	assert.False(t, store.has(cache.QuestionKey(3)))
	repo.tests.AssertExpectations(t)
}

func TestTestService_UpdateTitleConflict(t *testing.T) {
	repo := newMockRepository()
	ctx := context.Background()
	id := uint(3)

	repo.tests.On("GetByID", ctx, id).Return(listeningTest(id), nil)
	repo.tests.On("ExistsByTitle", ctx, "Taken", models.ModuleListening, &id).Return(true, nil)

	title := "Taken"
	_, err := newTestTestService(repo, nil).Update(ctx, id, &UpdateTestRequest{Title: &title})
	assert.ErrorIs(t, err, ErrTestDuplicateTitle)
	repo.tests.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestTestService_Delete(t *testing.T) {
	repo := newMockRepository()
	store := newMemoryCache()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, cache.QuestionKey(3), []string{"q1"}, 0))

	repo.tests.On("Delete", ctx, uint(3)).Return(nil)
	repo.tests.On("Delete", ctx, uint(4)).Return(repositories.ErrNotFound)

	svc := newTestTestService(repo, store)
	require.NoError(t, svc.Delete(ctx, 3))
	assert.False(t, store.has(cache.QuestionKey(3)))

	assert.ErrorIs(t, svc.Delete(ctx, 4), ErrTestNotFound)
}

func TestTestService_List(t *testing.T) {
	repo := newMockRepository()
	ctx := context.Background()
	filters := repositories.TestFilters{Limit: 0, Offset: 10}

	repo.tests.On("List", ctx, filters).Return([]*models.Test{
		{ID: 1, Title: "A", Module: models.ModuleReading},
		{ID: 2, Title: "B", Module: models.ModuleListening},
	}, int64(12), nil)

	resp, err := newTestTestService(repo, nil).List(ctx, filters)
	require.NoError(t, err)

	assert.Equal(t, int64(12), resp.Total)
	assert.Equal(t, 20, resp.Limit)
	assert.Equal(t, 10, resp.Offset)
	require.Len(t, resp.Tests, 2)
	assert.Equal(t, "reading", resp.Tests[0].Module)
	assert.Nil(t, resp.Tests[0].Content)
}
