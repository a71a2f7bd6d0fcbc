package user

import (
	"errors"
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"
)

// EmailTag is the validator rule name for the form's email pattern.
const EmailTag = "useremail"

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

const (
	MsgNameRequired  = "Name is required"
	MsgEmailRequired = "Email is required"
	MsgEmailInvalid  = "Invalid email address"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		if err := RegisterRules(validate); err != nil {
			panic(err)
		}
	})
	return validate
}

// RegisterRules installs the custom rules on v.
func RegisterRules(v *validator.Validate) error {
	return v.RegisterValidation(EmailTag, func(fl validator.FieldLevel) bool {
		return IsValidEmail(fl.Field().String())
	})
}

func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Validate checks the form fields. It returns a *ValidationError naming
// every failing field, or nil.
func (r SubmitRequest) Validate() error {
	err := validatorInstance().Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	issues := make([]FieldIssue, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.StructField() {
		case "Name":
			issues = append(issues, FieldIssue{Field: "name", Rule: fe.Tag(), Message: MsgNameRequired})
		case "Email":
			msg := MsgEmailInvalid
			if fe.Tag() == "required" {
				msg = MsgEmailRequired
			}
			issues = append(issues, FieldIssue{Field: "email", Rule: fe.Tag(), Message: msg})
		}
	}
	return &ValidationError{Issues: issues}
}
