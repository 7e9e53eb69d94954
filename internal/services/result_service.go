package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"gorm.io/datatypes"

	"github.com/abdulazizuv1/yes-english-center-sub001/internal/config"
	"github.com/abdulazizuv1/yes-english-center-sub001/internal/events"
	"github.com/abdulazizuv1/yes-english-center-sub001/internal/models"
	"github.com/abdulazizuv1/yes-english-center-sub001/internal/repositories"
	"github.com/abdulazizuv1/yes-english-center-sub001/internal/scoring"
	"github.com/abdulazizuv1/yes-english-center-sub001/internal/utils"
	"github.com/abdulazizuv1/yes-english-center-sub001/internal/validator"
)

type resultService struct {
	repo      repositories.Repository
	tests     TestService
	publisher events.EventPublisher
	scoring   config.ScoringConfig
	validator *validator.Validator
	logger    *ServiceLogger
	slog      *slog.Logger
}

func NewResultService(
	repo repositories.Repository,
	tests TestService,
	publisher events.EventPublisher,
	cfg config.ScoringConfig,
	v *validator.Validator,
	logger *slog.Logger,
) ResultService {
	if logger == nil {
		logger = slog.Default()
	}
	return &resultService{
		repo:      repo,
		tests:     tests,
		publisher: publisher,
		scoring:   cfg,
		validator: v,
		logger:    NewServiceLogger(logger, LogConfig{Service: "scoring", Component: "result_service"}),
		slog:      logger,
	}
}

// ===== SUBMISSION =====

// Submit scores a submission against the stored test and persists the
// result together with the answers exactly as submitted.
func (s *resultService) Submit(ctx context.Context, req *SubmitResultRequest) (resp *ResultResponse, err error) {
	op := s.logger.WithOperation(ctx, "submit_result", req.StudentID)
	defer func() {
		var id uint
		if resp != nil {
			id = resp.ID
		}
		op.LogResult(id, "result", err)
	}()

	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	submission, err := decodeSubmission(req.Answers)
	if err != nil {
		return nil, err
	}

	test, questions, err := s.tests.Questions(ctx, req.TestID)
	if err != nil {
		return nil, err
	}

	module, err := scoring.ParseModule(string(test.Module))
	if err != nil {
		return nil, fmt.Errorf("%w: test %d: %v", ErrTestContentCorrupt, test.ID, err)
	}
	if req.Module != "" {
		if expected, _ := scoring.ParseModule(req.Module); expected != module {
			return nil, NewBusinessRuleError("module_match",
				fmt.Sprintf("test %d is a %s test", test.ID, module),
				map[string]interface{}{"test_id": test.ID, "test_module": module, "requested_module": req.Module},
				ErrTestModuleMismatch)
		}
	}

	scored := scoring.Score(questions, submission, s.scoring.Matcher(module), scoring.WithSectionLayout(module.Layout()))
	band, err := scoring.ToBand(scored.Correct, module)
	if err != nil {
		return nil, err
	}

	submittedAt := time.Now().UTC()
	if req.SubmittedAt != nil && !req.SubmittedAt.IsZero() {
		submittedAt = req.SubmittedAt.UTC()
	}

	result := &models.Result{
		TestID:      test.ID,
		StudentID:   req.StudentID,
		Module:      test.Module,
		Score:       scored.Correct,
		Total:       scored.Total,
		Band:        band,
		Answers:     datatypes.JSON(req.Answers),
		SubmittedAt: submittedAt,
	}
	if err := encodeScore(result, scored); err != nil {
		return nil, err
	}

	// The test may have been deleted since its questions were loaded
	err = s.repo.Transaction(ctx, func(tx repositories.Repository) error {
		if _, err := tx.Test().GetByID(ctx, test.ID); err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrTestNotFound
			}
			return fmt.Errorf("failed to get test: %w", err)
		}
		if err := tx.Result().Create(ctx, result); err != nil {
			return fmt.Errorf("failed to save result: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug(ctx, "Result scored",
		"result_id", result.ID,
		"test_id", test.ID,
		"score", scored.Correct,
		"total", scored.Total,
		"band", band)

	s.publish(ctx, events.NewResultScoredEvent(events.ResultScoredEvent{
		ResultID:          result.ID,
		TestID:            test.ID,
		TestTitle:         test.Title,
		StudentID:         result.StudentID,
		Module:            string(module),
		Score:             result.Score,
		Total:             result.Total,
		Band:              band,
		PerSectionCorrect: scored.PerSectionCorrect,
		ScoredAt:          result.SubmittedAt,
	}))

	result.Test = *test
	return toResultResponse(result, true)
}

// ===== RETRIEVAL =====

// GetByID returns the stored result without recomputing it
func (s *resultService) GetByID(ctx context.Context, id uint) (*ResultResponse, error) {
	result, err := s.repo.Result().GetByIDWithTest(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to get result: %w", err)
	}
	return toResultResponse(result, true)
}

func (s *resultService) ListByStudent(ctx context.Context, studentID string, filters repositories.ResultFilters) (*ResultListResponse, error) {
	if studentID == "" {
		return nil, ValidationErrors{{Field: "student_id", Message: "is required", Rule: "required"}}
	}

	results, total, err := s.repo.Result().GetByStudent(ctx, studentID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}

	limit, offset := normalizePage(filters.Limit, filters.Offset)
	resp := &ResultListResponse{
		Results: make([]*ResultResponse, 0, len(results)),
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	}
	for _, result := range results {
		item, err := toResultResponse(result, false)
		if err != nil {
			return nil, err
		}
		resp.Results = append(resp.Results, item)
	}
	return resp, nil
}

func (s *resultService) GetStudentStats(ctx context.Context, studentID string) (*repositories.StudentStats, error) {
	if studentID == "" {
		return nil, ValidationErrors{{Field: "student_id", Message: "is required", Rule: "required"}}
	}
	stats, err := s.repo.Result().GetStudentStats(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get student stats: %w", err)
	}
	return stats, nil
}

// ===== REVIEW =====

// Review recomputes a stored result from the raw test document and the
// raw answers. The question cache is bypassed and the stored row is never
// rewritten; a disagreement is reported and published.
func (s *resultService) Review(ctx context.Context, id uint) (resp *ReviewResponse, err error) {
	op := s.logger.WithOperation(ctx, "review_result", "")
	defer func() { op.LogResult(id, "result", err) }()

	result, err := s.repo.Result().GetByIDWithTest(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to get result: %w", err)
	}
	if result.Test.ID == 0 {
		return nil, ErrTestNotFound
	}

	_, questions, err := extractQuestions(&result.Test)
	if err != nil {
		return nil, err
	}
	submission, err := decodeSubmission(json.RawMessage(result.Answers))
	if err != nil {
		return nil, fmt.Errorf("stored answers of result %d: %w", id, err)
	}

	module, err := scoring.ParseModule(string(result.Test.Module))
	if err != nil {
		return nil, fmt.Errorf("%w: test %d: %v", ErrTestContentCorrupt, result.Test.ID, err)
	}

	recomputed := scoring.Score(questions, submission, s.scoring.Matcher(module), scoring.WithSectionLayout(module.Layout()))
	band, err := scoring.ToBand(recomputed.Correct, module)
	if err != nil {
		return nil, err
	}

	changed, err := changedQuestions(result.Breakdown, recomputed)
	if err != nil {
		return nil, fmt.Errorf("stored breakdown of result %d: %w", id, err)
	}

	resp = &ReviewResponse{
		ResultID:         result.ID,
		StoredScore:      result.Score,
		StoredTotal:      result.Total,
		StoredBand:       result.Band,
		RecomputedScore:  recomputed.Correct,
		RecomputedBand:   band,
		ChangedQuestions: changed,
		Recomputed:       recomputed,
		ReviewedAt:       time.Now().UTC(),
	}
	resp.Mismatch = resp.StoredScore != resp.RecomputedScore ||
		resp.StoredTotal != recomputed.Total ||
		len(changed) > 0

	if resp.Mismatch {
		s.logger.LogScoreMismatch(ctx, result.ID, result.Score, recomputed.Correct, changed)
		s.publish(ctx, events.NewResultReviewedEvent(events.ResultReviewedEvent{
			ResultID:        result.ID,
			StoredScore:     result.Score,
			RecomputedScore: recomputed.Correct,
			ReviewedAt:      resp.ReviewedAt,
		}))
	}

	return resp, nil
}

// ===== HELPERS =====

// publish sends an event. Delivery failures never fail the request.
func (s *resultService) publish(ctx context.Context, event *events.ResultEvent) {
	if s.publisher == nil {
		return
	}
	if requestID := utils.RequestIDFromContext(ctx); requestID != "" {
		event.Metadata = map[string]interface{}{"request_id": requestID}
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.slog.ErrorContext(ctx, "Failed to publish event",
			"event_type", event.Type,
			"event_id", event.ID,
			"error", err)
	}
}

// encodeScore stores the derived parts of a score on the result row
func encodeScore(result *models.Result, scored scoring.ScoreResult) error {
	correct, err := json.Marshal(scored.CorrectAnswers())
	if err != nil {
		return fmt.Errorf("failed to encode correct answers: %w", err)
	}
	breakdown, err := json.Marshal(scored.PerQuestion)
	if err != nil {
		return fmt.Errorf("failed to encode breakdown: %w", err)
	}
	perSection, err := json.Marshal(scored.PerSectionCorrect)
	if err != nil {
		return fmt.Errorf("failed to encode section tallies: %w", err)
	}

	result.CorrectAnswers = datatypes.JSON(correct)
	result.Breakdown = datatypes.JSON(breakdown)
	result.PerSectionCorrect = datatypes.JSON(perSection)
	return nil
}

// changedQuestions lists the questions whose correctness differs between
// the stored breakdown and a recomputation, in recomputed order followed
// by questions that no longer exist.
func changedQuestions(stored datatypes.JSON, recomputed scoring.ScoreResult) ([]string, error) {
	previous := map[string]scoring.QuestionOutcome{}
	if len(stored) > 0 {
		if err := json.Unmarshal(stored, &previous); err != nil {
			return nil, err
		}
	}

	var changed []string
	for _, qID := range recomputed.Order {
		before, ok := previous[qID]
		if !ok || before.IsCorrect != recomputed.PerQuestion[qID].IsCorrect {
			changed = append(changed, qID)
		}
	}

	var removed []string
	for qID := range previous {
		if _, ok := recomputed.PerQuestion[qID]; !ok {
			removed = append(removed, qID)
		}
	}
	sort.Strings(removed)

	return append(changed, removed...), nil
}

func toResultResponse(result *models.Result, detailed bool) (*ResultResponse, error) {
	resp := &ResultResponse{
		ID:          result.ID,
		TestID:      result.TestID,
		TestTitle:   result.Test.Title,
		StudentID:   result.StudentID,
		Module:      string(result.Module),
		Score:       result.Score,
		Total:       result.Total,
		Band:        result.Band,
		SubmittedAt: result.SubmittedAt,
	}

	if len(result.PerSectionCorrect) > 0 {
		if err := json.Unmarshal(result.PerSectionCorrect, &resp.PerSectionCorrect); err != nil {
			return nil, fmt.Errorf("failed to decode section tallies of result %d: %w", result.ID, err)
		}
	}

	if detailed {
		resp.Answers = json.RawMessage(result.Answers)
		resp.CorrectAnswers = json.RawMessage(result.CorrectAnswers)
		resp.Breakdown = json.RawMessage(result.Breakdown)
	}
	return resp, nil
}
