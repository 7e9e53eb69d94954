package postgres

import (
	"context"

	"github.com/abdulazizuv1/yes-english-center-sub001/internal/models"
	"github.com/abdulazizuv1/yes-english-center-sub001/internal/repositories"
	"gorm.io/gorm"
)

type repository struct {
	db     *gorm.DB
	test   repositories.TestRepository
	result repositories.ResultRepository
}

// NewRepository wires the postgres repositories around one gorm handle
func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		db:     db,
		test:   NewTestPostgreSQL(db),
		result: NewResultPostgreSQL(db),
	}
}

func (r *repository) Test() repositories.TestRepository {
	return r.test
}

func (r *repository) Result() repositories.ResultRepository {
	return r.result
}

func (r *repository) Transaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

// AutoMigrate creates or updates the tables used by the service
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Test{}, &models.Result{})
}
