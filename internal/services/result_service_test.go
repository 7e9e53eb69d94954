package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/abdulazizuv1/yes-english-center-sub001/internal/events"
	"github.com/abdulazizuv1/yes-english-center-sub001/internal/models"
	"github.com/abdulazizuv1/yes-english-center-sub001/internal/repositories"
	"github.com/abdulazizuv1/yes-english-center-sub001/internal/scoring"
	"github.com/abdulazizuv1/yes-english-center-sub001/internal/validator"
)

type resultFixture struct {
	repo      *MockRepository
	store     *memoryCache
	publisher *events.MockEventPublisher
	svc       ResultService
}

func newResultFixture() *resultFixture {
	repo := newMockRepository()
	store := newMemoryCache()
	publisher := events.NewMockEventPublisher(testLogger())
	v := validator.New()
	tests := newTestTestService(repo, store)
	return &resultFixture{
		repo:      repo,
		store:     store,
		publisher: publisher,
		svc:       NewResultService(repo, tests, publisher, testScoringConfig(), v, testLogger()),
	}
}

// failingPublisher rejects every event
type failingPublisher struct{}

func (failingPublisher) Publish(ctx context.Context, event *events.ResultEvent) error {
	return errors.New("broker unavailable")
}

func (failingPublisher) Close() error { return nil }

func TestResultService_Submit(t *testing.T) {
	f := newResultFixture()
	ctx := context.Background()

	var saved *models.Result
	f.repo.tests.On("GetByID", ctx, uint(3)).Return(listeningTest(3), nil)
	f.repo.results.On("Create", ctx, mock.AnythingOfType("*models.Result")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(*models.Result)
			saved.ID = 42
		}).
		Return(nil)

	resp, err := f.svc.Submit(ctx, &SubmitResultRequest{
		TestID:    3,
		StudentID: "student-1",
		Answers:   json.RawMessage(listeningAnswers),
	})
	require.NoError(t, err)

	assert.Equal(t, uint(42), resp.ID)
	assert.Equal(t, "Listening Mock 1", resp.TestTitle)
	assert.Equal(t, 3, resp.Score)
	assert.Equal(t, 4, resp.Total)
	assert.Equal(t, 3.5, resp.Band)
	assert.Equal(t, []int{2, 1, 0, 0}, resp.PerSectionCorrect)

	require.NotNil(t, saved)
	assert.JSONEq(t, listeningAnswers, string(saved.Answers), "answers are stored as submitted")
	var key map[string]scoring.Answer
	require.NoError(t, json.Unmarshal(saved.CorrectAnswers, &key))
	assert.Len(t, key, 4)
	assert.Equal(t, scoring.Text("Seaview"), key["q1"])

	var breakdown map[string]scoring.QuestionOutcome
	require.NoError(t, json.Unmarshal(saved.Breakdown, &breakdown))
	assert.True(t, breakdown["q2"].IsCorrect)
	assert.False(t, breakdown["q3"].IsCorrect)
	assert.Equal(t, scoring.Text("A"), breakdown["q3"].UserAnswer)

	published := f.publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventResultScored, published[0].Type)
	data, ok := published[0].Data.(events.ResultScoredEvent)
	require.True(t, ok)
	assert.Equal(t, uint(42), data.ResultID)
	assert.Equal(t, "student-1", data.StudentID)
	assert.Equal(t, 3, data.Score)
	assert.Equal(t, 3.5, data.Band)
}

func TestResultService_SubmitKeepsSubmittedAt(t *testing.T) {
	f := newResultFixture()
	ctx := context.Background()
	submittedAt := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	f.repo.tests.On("GetByID", ctx, uint(3)).Return(listeningTest(3), nil)
	f.repo.results.On("Create", ctx, mock.AnythingOfType("*models.Result")).Return(nil)

	resp, err := f.svc.Submit(ctx, &SubmitResultRequest{
		TestID:      3,
		StudentID:   "student-1",
		Answers:     json.RawMessage(`{}`),
		SubmittedAt: &submittedAt,
	})
	require.NoError(t, err)
	assert.Equal(t, submittedAt, resp.SubmittedAt)
	assert.Equal(t, 0, resp.Score)
}

func TestResultService_SubmitPublishFailureIsNotFatal(t *testing.T) {
	repo := newMockRepository()
	ctx := context.Background()
	svc := NewResultService(repo, newTestTestService(repo, nil), failingPublisher{}, testScoringConfig(), validator.New(), testLogger())

	repo.tests.On("GetByID", ctx, uint(3)).Return(listeningTest(3), nil)
	repo.results.On("Create", ctx, mock.AnythingOfType("*models.Result")).Return(nil)

	_, err := svc.Submit(ctx, &SubmitResultRequest{TestID: 3, StudentID: "s", Answers: json.RawMessage(listeningAnswers)})
	assert.NoError(t, err)
}

func TestResultService_SubmitErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("module mismatch", func(t *testing.T) {
		f := newResultFixture()
		f.repo.tests.On("GetByID", ctx, uint(3)).Return(listeningTest(3), nil)

		_, err := f.svc.Submit(ctx, &SubmitResultRequest{
			TestID: 3, StudentID: "s", Module: "reading", Answers: json.RawMessage(`{}`),
		})
		assert.ErrorIs(t, err, ErrTestModuleMismatch)
		var rule *BusinessRuleError
		require.ErrorAs(t, err, &rule)
		assert.Equal(t, "module_match", rule.Rule)
		f.repo.results.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown test", func(t *testing.T) {
		f := newResultFixture()
		f.repo.tests.On("GetByID", ctx, uint(8)).Return(nil, repositories.ErrNotFound)

		_, err := f.svc.Submit(ctx, &SubmitResultRequest{TestID: 8, StudentID: "s", Answers: json.RawMessage(`{}`)})
		assert.ErrorIs(t, err, ErrTestNotFound)
	})

	t.Run("answers not an object", func(t *testing.T) {
		f := newResultFixture()
		_, err := f.svc.Submit(ctx, &SubmitResultRequest{TestID: 3, StudentID: "s", Answers: json.RawMessage(`"q1"`)})
		assert.ErrorIs(t, err, ErrInvalidAnswers)
	})

	t.Run("missing student", func(t *testing.T) {
		f := newResultFixture()
		_, err := f.svc.Submit(ctx, &SubmitResultRequest{TestID: 3, Answers: json.RawMessage(`{}`)})
		var verrs ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Equal(t, "student_id", verrs[0].Field)
	})

	t.Run("save failure publishes nothing", func(t *testing.T) {
		f := newResultFixture()
		f.repo.tests.On("GetByID", ctx, uint(3)).Return(listeningTest(3), nil)
		f.repo.results.On("Create", ctx, mock.Anything).Return(errors.New("disk full"))

		_, err := f.svc.Submit(ctx, &SubmitResultRequest{TestID: 3, StudentID: "s", Answers: json.RawMessage(`{}`)})
		require.Error(t, err)
		assert.Empty(t, f.publisher.GetPublishedEvents())
	})
}

// storedResult builds a result row as Submit would have written it
func storedResult(t *testing.T, test *models.Test, answers string) *models.Result {
	t.Helper()

	_, questions, err := extractQuestions(test)
	require.NoError(t, err)
	var submission scoring.Submission
	require.NoError(t, json.Unmarshal([]byte(answers), &submission))
	scored := scoring.Score(questions, submission, testScoringConfig().Matcher(scoring.ModuleListening),
		scoring.WithSectionLayout(scoring.ListeningLayout))

	result := &models.Result{
		ID:        42,
		TestID:    test.ID,
		StudentID: "student-1",
		Module:    test.Module,
		Score:     scored.Correct,
		Total:     scored.Total,
		Answers:   []byte(answers),
		Test:      *test,
	}
	require.NoError(t, encodeScore(result, scored))
	return result
}

func TestResultService_ReviewMatches(t *testing.T) {
	f := newResultFixture()
	ctx := context.Background()

	f.repo.results.On("GetByIDWithTest", ctx, uint(42)).Return(storedResult(t, listeningTest(3), listeningAnswers), nil)

	review, err := f.svc.Review(ctx, 42)
	require.NoError(t, err)

	assert.False(t, review.Mismatch)
	assert.Equal(t, 3, review.StoredScore)
	assert.Equal(t, 3, review.RecomputedScore)
	assert.Empty(t, review.ChangedQuestions)
	assert.Empty(t, f.publisher.GetPublishedEvents())
}

func TestResultService_ReviewDetectsChangedKey(t *testing.T) {
	f := newResultFixture()
	ctx := context.Background()

	result := storedResult(t, listeningTest(3), listeningAnswers)
	// The answer key of q3 was corrected after the result was stored
	result.Test.Content = []byte(`{"sections": [{"content": [
	  {"type": "question", "questionId": "q1", "format": "gap-fill", "correctAnswer": "Seaview"},
	  {"type": "question", "questionId": "q2", "format": "gap-fill", "correctAnswer": "colour/color"},
	  {"type": "question", "questionId": "q3", "format": "multiple-choice", "correctAnswer": "A"}
	]}, {"content": [
	  {"type": "question", "questionId": "q11", "format": "gap-fill", "correctAnswer": "river"}
	]}]}`)
	f.repo.results.On("GetByIDWithTest", ctx, uint(42)).Return(result, nil)

	review, err := f.svc.Review(ctx, 42)
	require.NoError(t, err)

	assert.True(t, review.Mismatch)
	assert.Equal(t, 3, review.StoredScore)
	assert.Equal(t, 4, review.RecomputedScore)
	assert.Equal(t, []string{"q3"}, review.ChangedQuestions)
	assert.Equal(t, 3, result.Score, "stored result is not rewritten")

	published := f.publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventResultReviewed, published[0].Type)
	f.repo.results.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestResultService_ReviewErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("result not found", func(t *testing.T) {
		f := newResultFixture()
		f.repo.results.On("GetByIDWithTest", ctx, uint(1)).Return(nil, repositories.ErrNotFound)

		_, err := f.svc.Review(ctx, 1)
		assert.ErrorIs(t, err, ErrResultNotFound)
	})

	t.Run("test purged", func(t *testing.T) {
		f := newResultFixture()
		f.repo.results.On("GetByIDWithTest", ctx, uint(2)).Return(&models.Result{ID: 2, TestID: 3}, nil)

		_, err := f.svc.Review(ctx, 2)
		assert.ErrorIs(t, err, ErrTestNotFound)
	})
}

func TestResultService_ListByStudent(t *testing.T) {
	f := newResultFixture()
	ctx := context.Background()
	filters := repositories.ResultFilters{Limit: 5}

	f.repo.results.On("GetByStudent", ctx, "student-1", filters).Return([]*models.Result{
		{ID: 1, StudentID: "student-1", Module: models.ModuleReading, Score: 30, Total: 40, Band: 7.0,
			PerSectionCorrect: []byte(`[10, 10, 10]`), Answers: []byte(`{"q1": "a"}`)},
	}, int64(1), nil)

	resp, err := f.svc.ListByStudent(ctx, "student-1", filters)
	require.NoError(t, err)

	require.Len(t, resp.Results, 1)
	assert.Equal(t, 5, resp.Limit)
	assert.Equal(t, []int{10, 10, 10}, resp.Results[0].PerSectionCorrect)
	assert.Nil(t, resp.Results[0].Answers, "history omits raw answers")

	_, err = f.svc.ListByStudent(ctx, "", filters)
	assert.True(t, IsValidation(err))
}

func TestChangedQuestions(t *testing.T) {
	stored := []byte(`{"q1": {"isCorrect": true}, "q2": {"isCorrect": false}, "q9": {"isCorrect": true}}`)
	recomputed := scoring.ScoreResult{
		Order: []string{"q1", "q2", "q3"},
		PerQuestion: map[string]scoring.QuestionOutcome{
			"q1": {IsCorrect: true},
			"q2": {IsCorrect: true},
			"q3": {IsCorrect: false},
		},
	}

	changed, err := changedQuestions(stored, recomputed)
	require.NoError(t, err)
	assert.Equal(t, []string{"q2", "q3", "q9"}, changed)
}
