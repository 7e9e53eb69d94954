package postgres

import (
	"fmt"
	"strings"

	"github.com/abdulazizuv1/yes-english-center-sub001/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// SharedHelpers holds query builders shared by the repositories
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// sortColumns whitelists the columns callers may sort by, per table
var sortColumns = map[string]map[string]bool{
	"tests":   {"created_at": true, "updated_at": true, "title": true, "id": true},
	"results": {"submitted_at": true, "score": true, "band": true, "id": true},
}

// ApplyPaginationAndSort orders by a whitelisted column and clamps the page
// size. Unknown sort columns fall back to defaultSort.
func (h *SharedHelpers) ApplyPaginationAndSort(query *gorm.DB, table, sortBy, sortOrder, defaultSort string, limit, offset int) *gorm.DB {
	if !sortColumns[table][sortBy] {
		sortBy = defaultSort
	}
	desc := !strings.EqualFold(sortOrder, "asc")
	query = query.Order(clause.OrderByColumn{Column: clause.Column{Name: sortBy}, Desc: desc})

	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return query.Limit(limit).Offset(offset)
}

func (h *SharedHelpers) ApplyTestFilters(query *gorm.DB, filters repositories.TestFilters) *gorm.DB {
	if filters.Module != nil {
		query = query.Where("module = ?", *filters.Module)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.Search != "" {
		query = query.Where("title ILIKE ?", fmt.Sprintf("%%%s%%", filters.Search))
	}
	return query
}

func (h *SharedHelpers) ApplyResultFilters(query *gorm.DB, filters repositories.ResultFilters) *gorm.DB {
	if filters.StudentID != nil {
		query = query.Where("student_id = ?", *filters.StudentID)
	}
	if filters.TestID != nil {
		query = query.Where("test_id = ?", *filters.TestID)
	}
	if filters.Module != nil {
		query = query.Where("module = ?", *filters.Module)
	}
	if filters.DateFrom != nil {
		query = query.Where("submitted_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("submitted_at <= ?", *filters.DateTo)
	}
	return query
}
