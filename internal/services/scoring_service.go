package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/abdulazizuv1/yes-english-center-sub001/internal/config"
	"github.com/abdulazizuv1/yes-english-center-sub001/internal/scoring"
	"github.com/abdulazizuv1/yes-english-center-sub001/internal/validator"
)

type scoringService struct {
	scoring   config.ScoringConfig
	validator *validator.Validator
	logger    *ServiceLogger
}

func NewScoringService(cfg config.ScoringConfig, v *validator.Validator, logger *slog.Logger) ScoringService {
	return &scoringService{
		scoring:   cfg,
		validator: v,
		logger:    NewServiceLogger(logger, LogConfig{Service: "scoring", Component: "scoring_service"}),
	}
}

// Preview scores a raw document against raw answers without storing
// anything.
func (s *scoringService) Preview(ctx context.Context, req *PreviewRequest) (resp *PreviewResponse, err error) {
	op := s.logger.WithOperation(ctx, "preview", "")
	defer func() { op.LogResult(0, "preview", err) }()

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

	submission, err := decodeSubmission(req.Answers)
	if err != nil {
		return nil, err
	}

	matcher := s.scoring.Matcher(module)
	if req.TextNormalization != "" {
		text, err := scoring.ParseTextNormalization(req.TextNormalization)
		if err != nil {
			return nil, err
		}
		matcher = scoring.NewMatcher(text)
	}

	result := scoring.Score(questions, submission, matcher, scoring.WithSectionLayout(module.Layout()))
	band, err := scoring.ToBand(result.Correct, module)
	if err != nil {
		return nil, err
	}

	return &PreviewResponse{Module: string(module), Result: result, Band: band}, nil
}

func (s *scoringService) BandLookup(ctx context.Context, module string, correct int) (*BandResponse, error) {
	m, err := scoring.ParseModule(module)
	if err != nil {
		return nil, err
	}
	if correct < 0 || correct > scoring.MaxRawScore {
		return nil, ValidationErrors{{
			Field:   "correct",
			Message: fmt.Sprintf("must be between 0 and %d", scoring.MaxRawScore),
			Value:   correct,
			Rule:    "range",
		}}
	}

	band, err := scoring.ToBand(correct, m)
	if err != nil {
		return nil, err
	}
	s.logger.Debug(ctx, "Band lookup", "module", m, "correct", correct, "band", band)

	return &BandResponse{Module: string(m), Correct: correct, Band: band}, nil
}

func (s *scoringService) OverallBand(ctx context.Context, req *OverallBandRequest) (*OverallBandResponse, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	mode := s.scoring.BandRounding
	if req.Rounding != "" {
		parsed, err := scoring.ParseRoundingMode(req.Rounding)
		if err != nil {
			return nil, err
		}
		mode = parsed
	}

	var overall float64
	if len(req.Others) == 0 {
		overall = scoring.OverallBand(req.Listening, req.Reading, mode)
	} else {
		bands := append([]float64{req.Listening, req.Reading}, req.Others...)
		overall = scoring.AverageBands(mode, bands...)
	}

	return &OverallBandResponse{
		Listening: req.Listening,
		Reading:   req.Reading,
		Others:    req.Others,
		Overall:   overall,
		Rounding:  string(mode),
	}, nil
}

// decodeSubmission reads an answers object. An absent body is an empty
// submission; anything other than a JSON object is rejected.
func decodeSubmission(raw json.RawMessage) (scoring.Submission, error) {
	submission := scoring.Submission{}
	if len(raw) == 0 || string(raw) == "null" {
		return submission, nil
	}
	if err := json.Unmarshal(raw, &submission); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAnswers, err)
	}
	return submission, nil
}
