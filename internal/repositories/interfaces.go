package repositories

import (
	"context"
	"time"

	"github.com/abdulazizuv1/yes-english-center-sub001/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type TestFilters struct {
	Module    *models.TestModule `json:"module"`
	CreatedBy *string            `json:"created_by"`
	Search    string             `json:"search"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
	SortBy    string             `json:"sort_by"`    // "created_at", "title"
	SortOrder string             `json:"sort_order"` // "asc", "desc"
}

type ResultFilters struct {
	StudentID *string            `json:"student_id"`
	TestID    *uint              `json:"test_id"`
	Module    *models.TestModule `json:"module"`
	DateFrom  *time.Time         `json:"date_from"`
	DateTo    *time.Time         `json:"date_to"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
	SortBy    string             `json:"sort_by"`    // "submitted_at", "score", "band"
	SortOrder string             `json:"sort_order"` // "asc", "desc"
}

// ===== SHARED STATISTICS STRUCTS =====

type StudentStats struct {
	TotalResults  int        `json:"total_results"`
	AverageScore  float64    `json:"average_score"`
	AverageBand   float64    `json:"average_band"`
	BestBand      float64    `json:"best_band"`
	LastSubmitted *time.Time `json:"last_submitted,omitempty"`
}

// ===== REPOSITORY INTERFACES =====

// TestRepository stores raw mock-test documents
type TestRepository interface {
	Create(ctx context.Context, test *models.Test) error
	GetByID(ctx context.Context, id uint) (*models.Test, error)
	Update(ctx context.Context, test *models.Test) error
	Delete(ctx context.Context, id uint) error // Soft delete
	List(ctx context.Context, filters TestFilters) ([]*models.Test, int64, error)
	ExistsByTitle(ctx context.Context, title string, module models.TestModule, excludeID *uint) (bool, error)
}

// ResultRepository stores scored submissions
type ResultRepository interface {
	Create(ctx context.Context, result *models.Result) error
	GetByID(ctx context.Context, id uint) (*models.Result, error)
	GetByIDWithTest(ctx context.Context, id uint) (*models.Result, error)
	List(ctx context.Context, filters ResultFilters) ([]*models.Result, int64, error)
	GetByStudent(ctx context.Context, studentID string, filters ResultFilters) ([]*models.Result, int64, error)
	GetStudentStats(ctx context.Context, studentID string) (*StudentStats, error)
}

// Repository groups the repositories used by the service layer
type Repository interface {
	Test() TestRepository
	Result() ResultRepository

	// Transaction runs fn against repositories bound to one database
	// transaction. The transaction is rolled back when fn returns an error.
	Transaction(ctx context.Context, fn func(Repository) error) error
}
