package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/datatypes"

	"github.com/abdulazizuv1/yes-english-center-sub001/internal/cache"
	"github.com/abdulazizuv1/yes-english-center-sub001/internal/models"
	"github.com/abdulazizuv1/yes-english-center-sub001/internal/repositories"
	"github.com/abdulazizuv1/yes-english-center-sub001/internal/scoring"
	"github.com/abdulazizuv1/yes-english-center-sub001/internal/validator"
)

type testService struct {
	repo      repositories.Repository
	questions *cache.QuestionCache
	validator *validator.Validator
	logger    *ServiceLogger
}

func NewTestService(repo repositories.Repository, questions *cache.QuestionCache, v *validator.Validator, logger *slog.Logger) TestService {
	if logger == nil {
		logger = slog.Default()
	}
	return &testService{
		repo:      repo,
		questions: questions,
		validator: v,
		logger:    NewServiceLogger(logger, LogConfig{Service: "scoring", Component: "test_service"}),
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *testService) Create(ctx context.Context, req *CreateTestRequest, creatorID string) (resp *TestResponse, err error) {
	op := s.logger.WithOperation(ctx, "create_test", creatorID)
	defer func() {
		var id uint
		if resp != nil {
			id = resp.ID
		}
		op.LogResult(id, "test", err)
	}()

	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	module, err := scoring.ParseModule(req.Module)
	if err != nil {
		return nil, err
	}

	_, questions, verrs := s.validator.Document().ValidateContent(module, req.Content)
	if len(verrs) > 0 {
		return nil, verrs
	}

	title := strings.TrimSpace(req.Title)
	exists, err := s.repo.Test().ExistsByTitle(ctx, title, models.TestModule(module), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check title uniqueness: %w", err)
	}
	if exists {
		return nil, ErrTestDuplicateTitle
	}

	test := &models.Test{
		Title:     title,
		Module:    models.TestModule(module),
		Content:   datatypes.JSON(req.Content),
		CreatedBy: creatorID,
	}
	if err := s.repo.Test().Create(ctx, test); err != nil {
		return nil, fmt.Errorf("failed to create test: %w", err)
	}

	test.QuestionsCount = len(questions)
	s.cacheQuestions(ctx, test.ID, questions)

	return toTestResponse(test, true), nil
}

func (s *testService) GetByID(ctx context.Context, id uint) (*TestResponse, error) {
	test, questions, err := s.Questions(ctx, id)
	if err != nil {
		return nil, err
	}
	test.QuestionsCount = len(questions)
	return toTestResponse(test, true), nil
}

// Update replaces the title and/or content of a test. The module of a
// test never changes.
func (s *testService) Update(ctx context.Context, id uint, req *UpdateTestRequest) (resp *TestResponse, err error) {
	op := s.logger.WithOperation(ctx, "update_test", "")
	defer func() { op.LogResult(id, "test", err) }()

	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	test, err := s.repo.Test().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		exists, err := s.repo.Test().ExistsByTitle(ctx, title, test.Module, &id)
		if err != nil {
			return nil, fmt.Errorf("failed to check title uniqueness: %w", err)
		}
		if exists {
			return nil, ErrTestDuplicateTitle
		}
		test.Title = title
	}

	var questions []scoring.CanonicalQuestion
	if len(req.Content) > 0 {
		_, questions, err = s.validateStored(test.Module, req.Content)
		if err != nil {
			return nil, err
		}
		test.Content = datatypes.JSON(req.Content)
	}

	if err := s.repo.Test().Update(ctx, test); err != nil {
		return nil, fmt.Errorf("failed to update test: %w", err)
	}

	s.invalidate(ctx, id)
	if questions == nil {
		_, questions, err = extractQuestions(test)
		if err != nil {
			return nil, err
		}
	}
	test.QuestionsCount = len(questions)

	return toTestResponse(test, true), nil
}

func (s *testService) Delete(ctx context.Context, id uint) (err error) {
	op := s.logger.WithOperation(ctx, "delete_test", "")
	defer func() { op.LogResult(id, "test", err) }()

	if err := s.repo.Test().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrTestNotFound
		}
		return fmt.Errorf("failed to delete test: %w", err)
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *testService) List(ctx context.Context, filters repositories.TestFilters) (*TestListResponse, error) {
	tests, total, err := s.repo.Test().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list tests: %w", err)
	}

	limit, offset := normalizePage(filters.Limit, filters.Offset)
	resp := &TestListResponse{
		Tests:  make([]*TestResponse, 0, len(tests)),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
	for _, test := range tests {
		resp.Tests = append(resp.Tests, toTestResponse(test, false))
	}
	return resp, nil
}

// ===== QUESTION LOADING =====

func (s *testService) Questions(ctx context.Context, testID uint) (*models.Test, []scoring.CanonicalQuestion, error) {
	test, err := s.repo.Test().GetByID(ctx, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrTestNotFound
		}
		return nil, nil, fmt.Errorf("failed to get test: %w", err)
	}

	cached, ok, err := s.questions.Get(ctx, testID)
	if err != nil {
		s.logger.Warn(ctx, "Question cache read failed", "test_id", testID, "error", err)
	}
	if ok {
		return test, cached, nil
	}

	_, questions, err := extractQuestions(test)
	if err != nil {
		return nil, nil, err
	}
	s.cacheQuestions(ctx, testID, questions)
	return test, questions, nil
}

// extractQuestions decodes the stored document of a test. Documents were validated
// on write, so a failure here means the stored row is damaged.
func extractQuestions(test *models.Test) (scoring.TestDocument, []scoring.CanonicalQuestion, error) {
	if _, err := scoring.ParseModule(string(test.Module)); err != nil {
		return scoring.TestDocument{}, nil, fmt.Errorf("%w: test %d: %v", ErrTestContentCorrupt, test.ID, err)
	}
	var doc scoring.TestDocument
	if err := json.Unmarshal(test.Content, &doc); err != nil {
		return doc, nil, fmt.Errorf("%w: test %d: %v", ErrTestContentCorrupt, test.ID, err)
	}
	return doc, scoring.Extract(doc), nil
}

func (s *testService) validateStored(module models.TestModule, content json.RawMessage) (scoring.TestDocument, []scoring.CanonicalQuestion, error) {
	m, err := scoring.ParseModule(string(module))
	if err != nil {
		return scoring.TestDocument{}, nil, err
	}
	doc, questions, verrs := s.validator.Document().ValidateContent(m, content)
	if len(verrs) > 0 {
		return doc, nil, verrs
	}
	return doc, questions, nil
}

func (s *testService) cacheQuestions(ctx context.Context, testID uint, questions []scoring.CanonicalQuestion) {
	if err := s.questions.Set(ctx, testID, questions); err != nil {
		s.logger.Warn(ctx, "Question cache write failed", "test_id", testID, "error", err)
	}
}

func (s *testService) invalidate(ctx context.Context, testID uint) {
	if err := s.questions.Invalidate(ctx, testID); err != nil {
		s.logger.Warn(ctx, "Question cache invalidation failed", "test_id", testID, "error", err)
	}
}

// ===== HELPERS =====

func toTestResponse(test *models.Test, withContent bool) *TestResponse {
	resp := &TestResponse{
		ID:             test.ID,
		Title:          test.Title,
		Module:         string(test.Module),
		QuestionsCount: test.QuestionsCount,
		CreatedBy:      test.CreatedBy,
		CreatedAt:      test.CreatedAt,
		UpdatedAt:      test.UpdatedAt,
	}
	if withContent && len(test.Content) > 0 {
		resp.Content = json.RawMessage(test.Content)
	}
	return resp
}

// normalizePage mirrors the pagination bounds applied by the repositories
func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
