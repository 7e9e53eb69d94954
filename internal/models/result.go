package models

import (
	"time"

	"gorm.io/datatypes"
)

// Result is one scored submission. Answers is kept exactly as submitted
// so the score can be recomputed later.
type Result struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	TestID    uint       `json:"test_id" gorm:"not null;index"`
	StudentID string     `json:"student_id" gorm:"not null;size:100;index"`
	Module    TestModule `json:"module" gorm:"not null;size:20"`

	Score int     `json:"score"`
	Total int     `json:"total"`
	Band  float64 `json:"band"`

	Answers           datatypes.JSON `json:"answers" gorm:"type:jsonb"`             // map qId -> answer
	CorrectAnswers    datatypes.JSON `json:"correct_answers" gorm:"type:jsonb"`     // map qId -> correct answer
	Breakdown         datatypes.JSON `json:"breakdown" gorm:"type:jsonb"`           // map qId -> outcome
	PerSectionCorrect datatypes.JSON `json:"per_section_correct" gorm:"type:jsonb"` // []int

	SubmittedAt time.Time `json:"submitted_at" gorm:"not null;index"`
	CreatedAt   time.Time `json:"created_at"`

	// Relations
	Test Test `json:"test,omitempty" gorm:"foreignKey:TestID"`
}

func (Result) TableName() string {
	return "results"
}
