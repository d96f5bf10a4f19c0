package mailchimp

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func validateEmail(email string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return &ValidationError{
			Field:  "email address",
			Value:  email,
			Reason: "syntax check failed",
		}
	}
	return nil
}

func validateListID(listID string) error {
	if strings.TrimSpace(listID) == "" {
		return &ValidationError{
			Field:  "list id",
			Reason: "mailchimp list id is not set",
		}
	}
	return nil
}
