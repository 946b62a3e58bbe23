// Package validation checks job variables against JSON Schema documents before a worker
// decodes them.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const rootField = "(root)"

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func mustSchema(doc string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(doc))
	if err != nil {
		panic(fmt.Sprintf("compile schema: %v", err))
	}
	return schema
}

// validate runs raw job variables through a compiled schema. A missing required property
// is reported against the property itself rather than its parent object.
func validate(schema *gojsonschema.Schema, variables string) *ValidationResult {
	result, err := schema.Validate(gojsonschema.NewStringLoader(variables))
	if err != nil {
		return &ValidationResult{Errors: []ValidationError{{
			Field:   rootField,
			Message: fmt.Sprintf("unreadable request: %v", err),
			Code:    "INVALID_JSON",
		}}}
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if desc.Type() == "required" {
			if property, ok := desc.Details()["property"].(string); ok {
				field = joinField(field, property)
			}
		}
		out.Errors = append(out.Errors, ValidationError{
			Field:   field,
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return out
}

func joinField(parent, property string) string {
	if parent == "" || parent == rootField {
		return property
	}
	return parent + "." + property
}

// GetErrorMessages returns one "field: message" line per error.
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

// Summary joins the error messages of an invalid result.
func (vr *ValidationResult) Summary() string {
	return strings.Join(vr.GetErrorMessages(), "; ")
}

func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}
