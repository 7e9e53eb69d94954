package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/abdulazizuv1/yes-english-center-sub001/internal/models"
	"github.com/abdulazizuv1/yes-english-center-sub001/internal/repositories"
	"gorm.io/gorm"
)

type TestPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewTestPostgreSQL(db *gorm.DB) repositories.TestRepository {
	return &TestPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

// Create stores a new test
func (t *TestPostgreSQL) Create(ctx context.Context, test *models.Test) error {
	if err := t.db.WithContext(ctx).Create(test).Error; err != nil {
		return fmt.Errorf("failed to create test: %w", err)
	}
	return nil
}

// GetByID retrieves a test by ID
func (t *TestPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Test, error) {
	var test models.Test
	if err := t.db.WithContext(ctx).First(&test, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("test %d: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}
	return &test, nil
}

// Update saves a test
func (t *TestPostgreSQL) Update(ctx context.Context, test *models.Test) error {
	if err := t.db.WithContext(ctx).Save(test).Error; err != nil {
		return fmt.Errorf("failed to update test: %w", err)
	}
	return nil
}

// Delete soft deletes a test
func (t *TestPostgreSQL) Delete(ctx context.Context, id uint) error {
	res := t.db.WithContext(ctx).Delete(&models.Test{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete test: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("test %d: %w", id, repositories.ErrNotFound)
	}
	return nil
}

// List retrieves tests with filters and pagination. Content is not loaded.
func (t *TestPostgreSQL) List(ctx context.Context, filters repositories.TestFilters) ([]*models.Test, int64, error) {
	query := t.db.WithContext(ctx).Model(&models.Test{})
	query = t.helpers.ApplyTestFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = t.helpers.ApplyPaginationAndSort(query, "tests", filters.SortBy, filters.SortOrder, "created_at", filters.Limit, filters.Offset)

	var tests []*models.Test
	if err := query.Omit("content").Find(&tests).Error; err != nil {
		return nil, 0, err
	}
	return tests, total, nil
}

// ExistsByTitle checks whether a test with the same title exists for a module
func (t *TestPostgreSQL) ExistsByTitle(ctx context.Context, title string, module models.TestModule, excludeID *uint) (bool, error) {
	query := t.db.WithContext(ctx).
		Model(&models.Test{}).
		Where("title = ? AND module = ?", title, module)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
