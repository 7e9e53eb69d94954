package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TestModule string

const (
	ModuleListening TestModule = "listening"
	ModuleReading   TestModule = "reading"
)

// Test is a mock exam as authored. Content holds the raw test document;
// questions are extracted from it on demand.
type Test struct {
	ID      uint           `json:"id" gorm:"primaryKey"`
	Title   string         `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Module  TestModule     `json:"module" gorm:"not null;size:20;index" validate:"required,ielts_module"`
	Content datatypes.JSON `json:"content" gorm:"type:jsonb;not null"`

	// Metadata
	CreatedBy string         `json:"created_by" gorm:"size:100;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Computed fields (not stored)
	QuestionsCount int `json:"questions_count" gorm:"-"`
}

func (Test) TableName() string {
	return "tests"
}
