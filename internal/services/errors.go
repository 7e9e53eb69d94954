package services

import (
	"errors"
	"fmt"

	apperrors "github.com/abdulazizuv1/yes-english-center-sub001/internal/errors"
	"github.com/abdulazizuv1/yes-english-center-sub001/internal/scoring"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Test specific errors
	ErrTestNotFound       = errors.New("test not found")
	ErrTestDuplicateTitle = errors.New("test title already exists for this module")
	ErrTestModuleMismatch = errors.New("test module does not match the request")
	ErrTestContentCorrupt = errors.New("stored test content cannot be decoded")

	// Result specific errors
	ErrResultNotFound = errors.New("result not found")
	ErrInvalidAnswers = errors.New("answers must be a JSON object keyed by question id")

	// Scoring errors
	ErrUnknownModule = scoring.ErrUnknownModule
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// BusinessRuleError rejects a well-formed request that conflicts with
// stored state. Err, when set, is the sentinel callers match with
// errors.Is.
type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
	Err     error                  `json:"-"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

func (bre *BusinessRuleError) Unwrap() error {
	return bre.Err
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}, err error) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
		Err:     err,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTestNotFound) ||
		errors.Is(err, ErrResultNotFound)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrInvalidAnswers) ||
		errors.Is(err, ErrUnknownModule) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsBusinessRule checks if error represents a business rule violation
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrTestDuplicateTitle)
}
