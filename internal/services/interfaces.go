package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/abdulazizuv1/yes-english-center-sub001/internal/models"
	"github.com/abdulazizuv1/yes-english-center-sub001/internal/repositories"
	"github.com/abdulazizuv1/yes-english-center-sub001/internal/scoring"
)

// ===== SERVICE INTERFACES =====

// ScoringService exposes the scoring core without persistence
type ScoringService interface {
	Preview(ctx context.Context, req *PreviewRequest) (*PreviewResponse, error)
	BandLookup(ctx context.Context, module string, correct int) (*BandResponse, error)
	OverallBand(ctx context.Context, req *OverallBandRequest) (*OverallBandResponse, error)
}

// TestService stores mock tests as authored
type TestService interface {
	Create(ctx context.Context, req *CreateTestRequest, creatorID string) (*TestResponse, error)
	GetByID(ctx context.Context, id uint) (*TestResponse, error)
	Update(ctx context.Context, id uint, req *UpdateTestRequest) (*TestResponse, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters repositories.TestFilters) (*TestListResponse, error)

	// Questions returns a test together with its extracted questions,
	// served from the question cache when possible.
	Questions(ctx context.Context, testID uint) (*models.Test, []scoring.CanonicalQuestion, error)
}

// ResultService scores submissions and keeps their results
type ResultService interface {
	Submit(ctx context.Context, req *SubmitResultRequest) (*ResultResponse, error)
	GetByID(ctx context.Context, id uint) (*ResultResponse, error)
	Review(ctx context.Context, id uint) (*ReviewResponse, error)
	ListByStudent(ctx context.Context, studentID string, filters repositories.ResultFilters) (*ResultListResponse, error)
	GetStudentStats(ctx context.Context, studentID string) (*repositories.StudentStats, error)
}

// ExportService renders results as spreadsheets
type ExportService interface {
	ExportResult(ctx context.Context, resultID uint) (*ExportFile, error)
	ExportStudentResults(ctx context.Context, studentID string) (*ExportFile, error)
}

// ===== SCORING DTOs =====

type PreviewRequest struct {
	Module  string          `json:"module" validate:"required,ielts_module"`
	Content json.RawMessage `json:"content" validate:"required"`
	Answers json.RawMessage `json:"answers"`

	// Overrides the configured normalization for this module
	TextNormalization string `json:"text_normalization" validate:"omitempty,text_normalization"`
}

type PreviewResponse struct {
	Module string              `json:"module"`
	Result scoring.ScoreResult `json:"result"`
	Band   float64             `json:"band"`
}

type BandResponse struct {
	Module  string  `json:"module"`
	Correct int     `json:"correct"`
	Band    float64 `json:"band"`
}

type OverallBandRequest struct {
	Listening float64 `json:"listening" validate:"band_score"`
	Reading   float64 `json:"reading" validate:"band_score"`

	// Further module bands (writing, speaking) averaged in when present
	Others   []float64 `json:"others" validate:"omitempty,max=2,dive,band_score"`
	Rounding string    `json:"rounding" validate:"omitempty,band_rounding"`
}

type OverallBandResponse struct {
	Listening float64   `json:"listening"`
	Reading   float64   `json:"reading"`
	Others    []float64 `json:"others,omitempty"`
	Overall   float64   `json:"overall"`
	Rounding  string    `json:"rounding"`
}

// ===== TEST DTOs =====

type CreateTestRequest struct {
	Title   string          `json:"title" validate:"required,min=1,max=200"`
	Module  string          `json:"module" validate:"required,ielts_module"`
	Content json.RawMessage `json:"content" validate:"required"`
}

type UpdateTestRequest struct {
	Title   *string         `json:"title" validate:"omitempty,min=1,max=200"`
	Content json.RawMessage `json:"content"`
}

type TestResponse struct {
	ID             uint            `json:"id"`
	Title          string          `json:"title"`
	Module         string          `json:"module"`
	Content        json.RawMessage `json:"content,omitempty"`
	QuestionsCount int             `json:"questions_count"`
	CreatedBy      string          `json:"created_by"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type TestListResponse struct {
	Tests  []*TestResponse `json:"tests"`
	Total  int64           `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// ===== RESULT DTOs =====

type SubmitResultRequest struct {
	TestID    uint            `json:"test_id" validate:"required"`
	StudentID string          `json:"student_id" validate:"required,max=100"`
	Answers   json.RawMessage `json:"answers" validate:"required"`

	// Optional guard against submitting to a test of another module
	Module      string     `json:"module" validate:"omitempty,ielts_module"`
	SubmittedAt *time.Time `json:"submitted_at"`
}

type ResultResponse struct {
	ID                uint            `json:"id"`
	TestID            uint            `json:"test_id"`
	TestTitle         string          `json:"test_title,omitempty"`
	StudentID         string          `json:"student_id"`
	Module            string          `json:"module"`
	Score             int             `json:"score"`
	Total             int             `json:"total"`
	Band              float64         `json:"band"`
	PerSectionCorrect []int           `json:"per_section_correct,omitempty"`
	Answers           json.RawMessage `json:"answers,omitempty"`
	CorrectAnswers    json.RawMessage `json:"correct_answers,omitempty"`
	Breakdown         json.RawMessage `json:"breakdown,omitempty"`
	SubmittedAt       time.Time       `json:"submitted_at"`
}

type ResultListResponse struct {
	Results []*ResultResponse `json:"results"`
	Total   int64             `json:"total"`
	Limit   int               `json:"limit"`
	Offset  int               `json:"offset"`
}

// ReviewResponse compares a stored score with one recomputed from the raw
// test and the raw answers. The stored result is never rewritten.
type ReviewResponse struct {
	ResultID         uint                `json:"result_id"`
	StoredScore      int                 `json:"stored_score"`
	StoredTotal      int                 `json:"stored_total"`
	StoredBand       float64             `json:"stored_band"`
	RecomputedScore  int                 `json:"recomputed_score"`
	RecomputedBand   float64             `json:"recomputed_band"`
	Mismatch         bool                `json:"mismatch"`
	ChangedQuestions []string            `json:"changed_questions,omitempty"`
	Recomputed       scoring.ScoreResult `json:"recomputed"`
	ReviewedAt       time.Time           `json:"reviewed_at"`
}

// ===== EXPORT DTOs =====

type ExportFile struct {
	FileName    string
	ContentType string
	Data        []byte
}
