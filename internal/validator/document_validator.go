package validator

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/abdulazizuv1/yes-english-center-sub001/internal/scoring"
)

// DocumentValidator checks authored test documents before they are stored
type DocumentValidator struct{}

// NewDocumentValidator creates a new document validator
func NewDocumentValidator() *DocumentValidator {
	return &DocumentValidator{}
}

// ValidateContent decodes a raw test document and extracts its questions.
// A document is accepted when it is a JSON object, uses the container
// expected by its module and yields between 1 and 40 questions.
func (v *DocumentValidator) ValidateContent(module scoring.Module, content json.RawMessage) (scoring.TestDocument, []scoring.CanonicalQuestion, ValidationErrors) {
	var errs ValidationErrors
	var doc scoring.TestDocument

	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		errs.Add("content", "test_document", "must be a JSON object")
		return doc, nil, errs
	}
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		errs.Add("content", "test_document", err.Error())
		return doc, nil, errs
	}

	switch module {
	case scoring.ModuleListening:
		if len(doc.Sections) == 0 {
			errs.Add("content.sections", "required", "listening tests must have at least one section")
		}
	case scoring.ModuleReading:
		if len(doc.Passages) == 0 && len(doc.Sections) == 0 {
			errs.Add("content.passages", "required", "reading tests must have at least one passage")
		}
	}

	questions := scoring.Extract(doc)
	switch {
	case len(questions) == 0:
		errs.Add("content", "min", "must contain at least one answerable question")
	case len(questions) > scoring.MaxRawScore:
		errs = append(errs, ValidationError{
			Field:   "content",
			Message: fmt.Sprintf("must contain at most %d questions", scoring.MaxRawScore),
			Value:   len(questions),
			Rule:    "max",
		})
	}

	if len(errs) > 0 {
		return doc, questions, errs
	}
	return doc, questions, nil
}
