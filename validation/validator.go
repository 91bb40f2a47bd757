// Package validation holds the typed request payloads and their
// validators. Each Validate function checks one payload struct and
// returns every violation found as a human-readable message, in field
// order, rather than failing on the first.
package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report violations under the json field name, not the Go one.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// check runs the struct tags and converts the result to messages.
func check(s interface{}) []string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{"invalid request payload"}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, message(fe))
	}
	return msgs
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s cannot be more than %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s cannot be more than %s", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, oneofValues(fe.Param()))
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// oneofValues turns the raw oneof param ('Read' 'To Read') into a
// comma-separated list.
func oneofValues(param string) string {
	parts := strings.Split(param, "' '")
	for i := range parts {
		parts[i] = strings.Trim(parts[i], "'")
	}
	return strings.Join(parts, ", ")
}

func isObjectID(s string) bool {
	_, err := primitive.ObjectIDFromHex(s)
	return err == nil
}
