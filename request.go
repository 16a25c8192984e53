package answereval

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/datar-psa/answereval/api"
	"github.com/datar-psa/answereval/heuristic"
)

// DefaultThreshold is the score at or above which an answer counts as correct
const DefaultThreshold = 70

// Request is one answer to evaluate
type Request struct {
	// Answer is the candidate, usually transcribed from speech
	Answer string `json:"answer" validate:"notblank"`
	// Reference is the expected answer. In examples mode it may be left empty
	// when ReferenceExamples is set.
	Reference string `json:"reference"`
	Question  string `json:"question"`
	// ReferenceExamples lists acceptable examples in examples mode
	ReferenceExamples []string `json:"referenceExamples,omitempty" validate:"omitempty,dive,notblank"`
	// Mode defaults to definition
	Mode Mode `json:"mode" validate:"omitempty,oneof=definition examples"`
	// Threshold defaults to DefaultThreshold when zero
	Threshold int `json:"threshold" validate:"min=0,max=100"`
}

func (r Request) threshold() int {
	if r.Threshold == 0 {
		return DefaultThreshold
	}
	return r.Threshold
}

func (r Request) mode() Mode {
	if r.Mode == "" {
		return ModeDefinition
	}
	return r.Mode
}

// reference returns the text the local tiers compare against
func (r Request) reference() string {
	if strings.TrimSpace(r.Reference) != "" {
		return r.Reference
	}
	return strings.Join(r.ReferenceExamples, ", ")
}

// examples returns the reference examples, falling back to the reference text
func (r Request) examples() []string {
	if len(r.ReferenceExamples) > 0 {
		return r.ReferenceExamples
	}
	return heuristic.SplitExamples(r.Reference)
}

// NewValidator returns a validator that understands Request
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	v.RegisterStructValidation(validateReference, Request{})
	return v
}

func validateReference(sl validator.StructLevel) {
	req := sl.Current().Interface().(Request)
	if strings.TrimSpace(req.Reference) != "" {
		return
	}
	if req.mode() == ModeExamples && len(req.ReferenceExamples) > 0 {
		return
	}
	sl.ReportError(req.Reference, "reference", "Reference", "notblank", "")
}

// Validate checks req and converts failures into a *ValidationError.
func Validate(v *validator.Validate, req Request) error {
	err := v.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return &api.ValidationError{Field: "request", Reason: err.Error(), Err: err}
	}

	fe := validationErrors[0]
	verr := &api.ValidationError{Field: fe.Field(), Err: err}
	switch fe.Field() {
	case "answer":
		verr.Reason = "candidate answer is empty"
		verr.Err = api.ErrNoAnswer
	case "reference":
		verr.Reason = "reference answer is empty"
		verr.Err = api.ErrNoReference
	default:
		verr.Reason = "failed on the '" + fe.Tag() + "' rule"
	}
	return verr
}
