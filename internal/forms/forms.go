// Package forms binds and validates submitted form data.
//
// Binding goes through gin's validator with field names taken from the
// `form` tag, so error keys match the names the client submitted. A form
// may implement Cleaner for checks that span several fields.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// NonFieldKey collects errors that do not belong to a single field.
const NonFieldKey = "form"

// FieldErrors maps a field name to its error messages.
type FieldErrors map[string][]string

// Add appends msg to field.
func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Error implements error.
func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(e[f], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Cleaner is implemented by forms with cross-field validation. Clean runs
// only when every field passed its own validation.
type Cleaner interface {
	Clean(errs FieldErrors)
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(formFieldName)
		_ = v.RegisterValidation("trimmax", trimmedMax)
	}
}

// trimmedMax is max for text fields that Clean trims, so surrounding
// whitespace does not count towards the limit.
func trimmedMax(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) <= n
}

func formFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("form"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return fld.Name
	}
	return name
}

// Bind fills form from the request and validates it. It returns nil when
// the form is valid.
func Bind(c *gin.Context, form any) FieldErrors {
	errs := FieldErrors{}

	if err := c.ShouldBind(form); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs.Add(fe.Field(), message(fe))
			}
		} else {
			errs.Add(NonFieldKey, "Invalid form data.")
		}
		return errs
	}

	if cleaner, ok := form.(Cleaner); ok {
		cleaner.Clean(errs)
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("Select at least %s.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "max", "trimmax":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("Select at most %s.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "gte":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "lte":
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	default:
		return "Enter a valid value."
	}
}
