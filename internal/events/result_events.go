package events

import (
	"time"

	"github.com/ThreeDotsLabs/watermill"
)

// EventType represents the kinds of events emitted by the scoring service
type EventType string

const (
	EventResultScored   EventType = "result.scored"
	EventResultReviewed EventType = "result.reviewed"
)

const (
	eventSource  = "ielts-scoring-service"
	eventVersion = "1.0"
)

// ResultEvent is the envelope for every published event
type ResultEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type ResultScoredEvent struct {
	ResultID          uint      `json:"result_id"`
	TestID            uint      `json:"test_id"`
	TestTitle         string    `json:"test_title"`
	StudentID         string    `json:"student_id"`
	Module            string    `json:"module"`
	Score             int       `json:"score"`
	Total             int       `json:"total"`
	Band              float64   `json:"band"`
	PerSectionCorrect []int     `json:"per_section_correct,omitempty"`
	ScoredAt          time.Time `json:"scored_at"`
}

// ResultReviewedEvent is emitted when a review recomputation disagrees
// with the stored score.
type ResultReviewedEvent struct {
	ResultID        uint      `json:"result_id"`
	StoredScore     int       `json:"stored_score"`
	RecomputedScore int       `json:"recomputed_score"`
	ReviewedAt      time.Time `json:"reviewed_at"`
}

func NewResultScoredEvent(data ResultScoredEvent) *ResultEvent {
	return newEvent(EventResultScored, data)
}

func NewResultReviewedEvent(data ResultReviewedEvent) *ResultEvent {
	return newEvent(EventResultReviewed, data)
}

func newEvent(t EventType, data interface{}) *ResultEvent {
	return &ResultEvent{
		ID:        watermill.NewUUID(),
		Type:      t,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}
