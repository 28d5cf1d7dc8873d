package utils

import (
	"errors"
	"reflect"
	"strings"

	"github.com/badoux/checkmail"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names so messages match the request body.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("shortcut", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || (strings.HasPrefix(s, "/") && len(s) > 1 && !strings.ContainsAny(s, " \t\n"))
	})
	return v
}

func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	// Format validation errors
	var messages []string
	for _, err := range validationErrors {
		field := err.Field()
		param := err.Param()

		switch err.Tag() {
		case "required":
			messages = append(messages, field+" is required")
		case "min":
			messages = append(messages, field+" must be at least "+param+" characters")
		case "max":
			messages = append(messages, field+" must be at most "+param+" characters")
		case "email":
			messages = append(messages, field+" must be a valid email")
		case "oneof":
			messages = append(messages, field+" must be one of: "+strings.ReplaceAll(param, " ", ", "))
		case "shortcut":
			messages = append(messages, field+" must start with / and contain no spaces")
		default:
			messages = append(messages, field+" is invalid")
		}
	}

	return errors.New(strings.Join(messages, ", "))
}

// IsValidEmail checks the address syntax only; no DNS or SMTP probing.
func IsValidEmail(email string) bool {
	return checkmail.ValidateFormat(email) == nil
}
