package handlers

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

func BindJSON(ctx *gin.Context, out interface{}) bool {
	err := ctx.ShouldBindJSON(out)

	if err != nil {
		RespondBadRequest(ctx, bindErrorDetail(err, out))

		return false
	}

	return true
}

// bindErrorDetail flattens a bind failure into one human-readable line,
// naming fields by their JSON tags rather than Go struct fields.
func bindErrorDetail(err error, out interface{}) string {
	rootType := baseStructType(out)

	// validator errors (struct bind tags)

	var validatorError validator.ValidationErrors

	if errors.As(err, &validatorError) {
		parts := make([]string, 0, len(validatorError))

		for _, fieldError := range validatorError {
			field := jsonNameForField(rootType, fieldError.Field())
			parts = append(parts, field+" "+validationMessage(fieldError.Tag(), fieldError.Param()))
		}
		return strings.Join(parts, "; ")
	}

	// in the event of bad json

	var syntaxError *json.SyntaxError

	if errors.As(err, &syntaxError) {
		return "Invalid JSON syntax"
	}

	// in the event of a type mismatch

	var unmatchedTypeError *json.UnmarshalTypeError

	if errors.As(err, &unmatchedTypeError) {
		field := jsonNameForField(rootType, unmatchedTypeError.Field)

		if field == "" {
			field = strings.TrimSpace(unmatchedTypeError.Field)
		}

		return field + " must be of type " + unmatchedTypeError.Type.String()
	}

	// final fallback if the error could not be deciphered
	return "Invalid request body"
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

func jsonNameForField(rootType reflect.Type, name string) string {
	if rootType == nil || name == "" {
		return name
	}

	if sf, ok := rootType.FieldByName(name); ok {
		return jsonNameFromStructField(sf)
	}

	return name
}

func jsonNameFromStructField(sf reflect.StructField) string {
	tag := sf.Tag.Get("json")
	if tag == "" {
		return sf.Name
	}

	name, _, _ := strings.Cut(tag, ",")
	if name == "" || name == "-" {
		return sf.Name
	}

	return name
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	default:
		if param != "" {
			return "failed " + rule + " validation (" + param + ")"
		}
		return "failed " + rule + " validation"
	}
}
