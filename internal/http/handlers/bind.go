package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/geocoder89/userdesk/internal/domain/user"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

// BindJSON decodes the body into out, answering 400 on failure.
func BindJSON(ctx *gin.Context, out interface{}) bool {
	if err := ctx.ShouldBindJSON(out); err != nil {
		RespondBadRequest(ctx, "Invalid request body", parseBindError(err, out, "json"))
		return false
	}
	return true
}

// BindURI binds path params into out, answering 400 on failure.
func BindURI(ctx *gin.Context, out interface{}) bool {
	if err := ctx.ShouldBindUri(out); err != nil {
		RespondBadRequest(ctx, "Invalid path parameter", parseBindError(err, out, "uri"))
		return false
	}
	return true
}

// BindQuery binds the query string into out, answering 400 on failure.
func BindQuery(ctx *gin.Context, out interface{}) bool {
	if err := ctx.ShouldBindQuery(out); err != nil {
		RespondBadRequest(ctx, "Invalid query parameter", parseBindError(err, out, "form"))
		return false
	}
	return true
}

// fieldErrorsFromValidation turns the form's own validation result into
// the same shape bind errors use.
func fieldErrorsFromValidation(verr *user.ValidationError) []FieldError {
	fields := make([]FieldError, 0, len(verr.Issues))
	for _, is := range verr.Issues {
		fields = append(fields, FieldError{
			Field:   is.Field,
			Rule:    is.Rule,
			Message: is.Message,
		})
	}
	return fields
}

// parseBindError describes err using the names the client sent, read
// from the struct tag named by source (json, uri or form).
func parseBindError(err error, out interface{}, source string) interface{} {
	rootType := baseStructType(out)

	var validatorError validator.ValidationErrors

	if errors.As(err, &validatorError) {
		fields := make([]FieldError, 0, len(validatorError))

		for _, fieldError := range validatorError {
			rule := fieldError.Tag()
			param := fieldError.Param()

			fields = append(fields, FieldError{
				Field:   tagName(rootType, fieldError.StructField(), source),
				Rule:    rule,
				Param:   param,
				Message: validationMessage(rule, param),
			})
		}
		return gin.H{"fields": fields}
	}

	var syntaxError *json.SyntaxError

	if errors.As(err, &syntaxError) {
		return gin.H{
			"json": "invalid_json_syntax",
		}
	}

	var unmatchedTypeError *json.UnmarshalTypeError

	if errors.As(err, &unmatchedTypeError) {
		field := strings.TrimSpace(unmatchedTypeError.Field)

		return gin.H{
			"json":  "invalid_json_type",
			"field": field,
			"fields": []FieldError{
				{
					Field:   field,
					Rule:    "type",
					Message: fmt.Sprintf("must be of type %s", unmatchedTypeError.Type.String()),
				},
			},
		}
	}

	// final fallback if the error could not be deciphered
	return gin.H{"reason": err.Error()}
}

func baseStructType(v interface{}) reflect.Type {
	t := reflect.TypeOf(v)

	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t != nil && t.Kind() == reflect.Struct {
		return t
	}

	return nil
}

func tagName(rootType reflect.Type, structField, source string) string {
	if rootType == nil {
		return structField
	}

	sf, ok := rootType.FieldByName(structField)
	if !ok {
		return structField
	}

	tag := sf.Tag.Get(source)
	name, _, _ := strings.Cut(tag, ",")
	if name == "" || name == "-" {
		return structField
	}

	return name
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	case "oneof":
		return "must be one of " + strings.ReplaceAll(param, " ", ", ")
	case "numeric", "number":
		return "must be a number"
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}
