package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/abdulazizuv1/yes-english-center-sub001/internal/models"
	"github.com/abdulazizuv1/yes-english-center-sub001/internal/repositories"
	"gorm.io/gorm"
)

type ResultPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewResultPostgreSQL(db *gorm.DB) repositories.ResultRepository {
	return &ResultPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (r *ResultPostgreSQL) Create(ctx context.Context, result *models.Result) error {
	if err := r.db.WithContext(ctx).Create(result).Error; err != nil {
		return fmt.Errorf("failed to create result: %w", err)
	}
	return nil
}

func (r *ResultPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Result, error) {
	var result models.Result
	if err := r.db.WithContext(ctx).First(&result, id).Error; err != nil {
		return nil, r.wrapGetError(id, err)
	}
	return &result, nil
}

// GetByIDWithTest loads the result together with the test it was scored
// against, including soft-deleted tests.
func (r *ResultPostgreSQL) GetByIDWithTest(ctx context.Context, id uint) (*models.Result, error) {
	var result models.Result
	if err := r.db.WithContext(ctx).
		Preload("Test", func(db *gorm.DB) *gorm.DB {
			return db.Unscoped()
		}).
		First(&result, id).Error; err != nil {
		return nil, r.wrapGetError(id, err)
	}
	return &result, nil
}

func (r *ResultPostgreSQL) List(ctx context.Context, filters repositories.ResultFilters) ([]*models.Result, int64, error) {
	var results []*models.Result
	var total int64

	// apply filter first
	query := r.db.WithContext(ctx).Model(&models.Result{})
	query = r.helpers.ApplyResultFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// then apply pagination and sorting
	query = r.helpers.ApplyPaginationAndSort(query, "results", filters.SortBy, filters.SortOrder, "submitted_at", filters.Limit, filters.Offset)

	if err := query.Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *ResultPostgreSQL) GetByStudent(ctx context.Context, studentID string, filters repositories.ResultFilters) ([]*models.Result, int64, error) {
	filters.StudentID = &studentID
	return r.List(ctx, filters)
}

func (r *ResultPostgreSQL) GetStudentStats(ctx context.Context, studentID string) (*repositories.StudentStats, error) {
	var row struct {
		TotalResults int
		AverageScore float64
		AverageBand  float64
		BestBand     float64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Result{}).
		Select(`COUNT(*) AS total_results,
			COALESCE(AVG(score), 0) AS average_score,
			COALESCE(AVG(band), 0) AS average_band,
			COALESCE(MAX(band), 0) AS best_band`).
		Where("student_id = ?", studentID).
		Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get student stats: %w", err)
	}

	stats := &repositories.StudentStats{
		TotalResults: row.TotalResults,
		AverageScore: row.AverageScore,
		AverageBand:  row.AverageBand,
		BestBand:     row.BestBand,
	}

	if row.TotalResults > 0 {
		var last models.Result
		if err := r.db.WithContext(ctx).
			Select("submitted_at").
			Where("student_id = ?", studentID).
			Order("submitted_at DESC").
			First(&last).Error; err != nil {
			return nil, fmt.Errorf("failed to get last submission: %w", err)
		}
		stats.LastSubmitted = &last.SubmittedAt
	}
	return stats, nil
}

func (r *ResultPostgreSQL) wrapGetError(id uint, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("result %d: %w", id, repositories.ErrNotFound)
	}
	return fmt.Errorf("failed to get result: %w", err)
}
