package validator

import (
	"math"
	"reflect"
	"strings"

	"github.com/abdulazizuv1/yes-english-center-sub001/internal/scoring"
	"github.com/go-playground/validator/v10"
)

// Validator is the main validator instance that combines all validation types
type Validator struct {
	structValidator   *validator.Validate
	documentValidator *DocumentValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()

	// Register all custom validators once
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:   structValidator,
		documentValidator: NewDocumentValidator(),
	}
}

// ValidateStruct validates struct tags and converts failures to
// ValidationErrors
func (v *Validator) ValidateStruct(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if errs := ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

// Engine exposes the underlying go-playground validator, e.g. for gin
func (v *Validator) Engine() *validator.Validate {
	return v.structValidator
}

// Document returns the test document validator
func (v *Validator) Document() *DocumentValidator {
	return v.documentValidator
}

// RegisterCustomValidators installs the custom tags on an existing engine
func RegisterCustomValidators(validate *validator.Validate) {
	registerCustomValidators(validate)
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("ielts_module", validateModule)
	validate.RegisterValidation("band_rounding", validateBandRounding)
	validate.RegisterValidation("text_normalization", validateTextNormalization)
	validate.RegisterValidation("band_score", validateBandScore)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Custom validation functions

func validateModule(fl validator.FieldLevel) bool {
	_, err := scoring.ParseModule(fl.Field().String())
	return err == nil
}

func validateBandRounding(fl validator.FieldLevel) bool {
	_, err := scoring.ParseRoundingMode(fl.Field().String())
	return err == nil
}

func validateTextNormalization(fl validator.FieldLevel) bool {
	_, err := scoring.ParseTextNormalization(fl.Field().String())
	return err == nil
}

// validateBandScore accepts 0..9 in half-band steps
func validateBandScore(fl validator.FieldLevel) bool {
	band := fl.Field().Float()
	if band < 0 || band > 9 {
		return false
	}
	return math.Mod(band*2, 1) == 0
}
