package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/study-buddy-service/internal/models"
)

// Validator wraps go-playground/validator with json field names and the
// service's custom rules
type Validator struct {
	validate *validator.Validate
	business *BusinessValidator
}

// ValidationError represents one failed field rule
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return ve[0].Message
	}
	return fmt.Sprintf("%s (and %d more)", ve[0].Message, len(ve)-1)
}

// New creates a validator with custom rules registered
func New() *Validator {
	v := newValidate()
	return &Validator{
		validate: v,
		business: &BusinessValidator{validate: v},
	}
}

// Validate runs struct tags and returns ValidationErrors or nil
func (v *Validator) Validate(s interface{}) error {
	if errs := ToValidationErrors(v.validate.Struct(s)); len(errs) > 0 {
		return errs
	}
	return nil
}

// GetBusinessValidator returns the validator for cross-field rules
func (v *Validator) GetBusinessValidator() *BusinessValidator {
	return v.business
}

// ToValidationErrors converts validator output into ValidationErrors
func ToValidationErrors(err error) ValidationErrors {
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return ValidationErrors{{Field: "", Message: err.Error(), Rule: "invalid"}}
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Message: errorMessage(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}
	return out
}

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	registerRules(v)
	return v
}

func errorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("Missing required field: %s", fe.Field())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "feedback_type":
		return fmt.Sprintf("%s must be one of: General, Bug, Feature Request, Inquiry, Other", fe.Field())
	case "survey_tool":
		if v, ok := fe.Value().(string); ok && strings.TrimSpace(v) != "" {
			return fmt.Sprintf("%s must be at most %d characters", fe.Field(), maxToolNameLength)
		}
		return fmt.Sprintf("Missing required field: %s", fe.Field())
	case "feedback_category":
		return fmt.Sprintf("%s must be one of: submodule2, submodule3", fe.Field())
	case "prompt_type":
		return fmt.Sprintf("%s must be Good or Bad", fe.Field())
	case "user_role":
		return fmt.Sprintf("%s must be Student or Admin", fe.Field())
	case "subject", "survey_subject":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.Join(models.SurveySubjects, ", "))
	case "eq":
		return fmt.Sprintf("%s must equal %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag())
	}
}
