package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		return field.Interface().(validatable).validationValue()
	}, Nullable[int64]{}, Nullable[Date]{})
	return v
}

// ValidationIssue is one entry of a 422 detail list.
type ValidationIssue struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

type ValidationError struct {
	Issues []ValidationIssue
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		msgs = append(msgs, issue.Msg)
	}
	return strings.Join(msgs, ", ")
}

// Validate checks v against its validate tags. Failures are returned as a
// *ValidationError; nil and non-struct values always pass.
func Validate(v any) error {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	err := validate.Struct(rv.Interface())
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	issues := make([]ValidationIssue, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		issues = append(issues, ValidationIssue{
			Loc:  []string{"body", fe.Field()},
			Msg:  issueMessage(fe),
			Type: fe.Tag(),
		})
	}
	return &ValidationError{Issues: issues}
}

func issueMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s: Field required", field)
	case "email":
		return fmt.Sprintf("%s: value is not a valid email address", field)
	case "url":
		return fmt.Sprintf("%s: Input should be a valid URL", field)
	case "max":
		return fmt.Sprintf("%s: should have at most %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s: should have at least %s characters", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s: Input should be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s: Input should be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s: Input should be less than or equal to %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s: Input should be one of %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s: invalid value", field)
	}
}
