package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate = newValidator()
	enums    Enums
)

// Enums resolves named value domains for the "enum=<domain>" tag.
type Enums interface {
	Values(domain string) []string
	Match(domain, value string) (string, bool)
}

// RegisterEnums installs the "enum" tag backed by e. Call it from an init
// function; the validator is not safe to reconfigure while in use.
func RegisterEnums(e Enums) {
	enums = e
	_ = validate.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
		_, ok := e.Match(fl.Param(), fl.Field().String())
		return ok
	})
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// hata anahtarları json alan adlarıyla dönsün
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Struct validates s and returns field errors keyed by json path
// (e.g. "units[1].rent_amount"), or nil when s is valid.
func Struct(s interface{}) map[string][]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string][]string{"_": {err.Error()}}
	}

	out := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		key := fieldPath(fe.Namespace())
		out[key] = append(out[key], message(fe))
	}
	return out
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("The %s field must have at least %s items.", field, fe.Param())
		}
		return fmt.Sprintf("The %s field must be at least %s.", field, fe.Param())
	case "max":
		return fmt.Sprintf("The %s field may not be greater than %s.", field, fe.Param())
	case "gte":
		return fmt.Sprintf("The %s field must be greater than or equal to %s.", field, fe.Param())
	case "lte":
		return fmt.Sprintf("The %s field must be less than or equal to %s.", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid. Must be one of: %s.", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "enum":
		var allowed []string
		if enums != nil {
			allowed = enums.Values(fe.Param())
		}
		return fmt.Sprintf("The selected %s is invalid. Must be one of: %s.", field, strings.Join(allowed, ", "))
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", field)
	case "datetime":
		return fmt.Sprintf("The %s field must be a date in the format %s.", field, fe.Param())
	case "gtfield":
		return fmt.Sprintf("The %s field must be a date after %s.", field, fe.Param())
	}
	return fmt.Sprintf("The %s field is invalid (%s).", field, fe.Tag())
}
