package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their wire name so clients can match errors to params.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query", "yaml"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// Validate runs struct validation outside of a request, e.g. for CLI input.
// It returns nil or a []ValidationError.
func Validate(v interface{}) interface{} {
	if err := validate.Struct(v); err != nil {
		return toValidationErrors(err)
	}
	return nil
}

// ReadAndValidateRequest binds the request, applies default tags, then validates.
// It returns nil or a []ValidationError ready for BadRequestResponse.
func ReadAndValidateRequest(c echo.Context, req interface{}) interface{} {
	if err := c.Bind(req); err != nil {
		return toValidationErrors(err)
	}
	if err := defaults.Set(req); err != nil {
		return toValidationErrors(err)
	}
	if err := validate.StructCtx(c.Request().Context(), req); err != nil {
		return toValidationErrors(err)
	}
	return nil
}

func toValidationErrors(err error) []ValidationError {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		out := make([]ValidationError, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			out = append(out, describe(fe))
		}
		return out
	}

	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg = fmt.Sprint(he.Message)
	}
	return []ValidationError{{Code: "ERR_UNKNOWN", Message: msg}}
}

// rule renders one validator tag. bound names the param key clients receive.
type rule struct {
	text  string
	bound string
}

var rules = map[string]rule{
	"required": {text: "is required"},
	"gt":       {text: "must be greater than %s", bound: "value"},
	"gte":      {text: "must be greater than or equal to %s", bound: "min"},
	"lt":       {text: "must be less than %s", bound: "value"},
	"lte":      {text: "must be less than or equal to %s", bound: "max"},
	"min":      {text: "must be at least %s", bound: "min"},
	"max":      {text: "must be at most %s", bound: "max"},
}

func describe(fe validator.FieldError) ValidationError {
	ve := ValidationError{
		Code:  "ERR_" + strings.ToUpper(fe.Tag()),
		Field: fe.Field(),
	}

	if fe.Tag() == "oneof" {
		opts := strings.Fields(fe.Param())
		ve.Message = fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.Join(opts, ", "))
		ve.Params = map[string]interface{}{"options": opts}
		return ve
	}

	r, ok := rules[fe.Tag()]
	if !ok {
		ve.Message = fmt.Sprintf("%s failed validation: %s", fe.Field(), fe.Tag())
		return ve
	}
	text := r.text
	if strings.Contains(text, "%s") {
		text = fmt.Sprintf(text, fe.Param())
	}
	if (fe.Tag() == "min" || fe.Tag() == "max") && fe.Kind() == reflect.String {
		text += " characters"
	}
	ve.Message = fe.Field() + " " + text
	if r.bound != "" {
		ve.Params = map[string]interface{}{r.bound: fe.Param()}
	}
	return ve
}
