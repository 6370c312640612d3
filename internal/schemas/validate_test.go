package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateConfigJSON_Valid(t *testing.T) {
	doc := `{
		"repo": "./service",
		"model": "gpt-4o",
		"provider": "openai",
		"language": "java",
		"log_level": "WARNING",
		"timeout": "90s",
		"keep_steps": true,
		"max_file_size": 204800
	}`

	assert.NoError(t, ValidateConfigJSON([]byte(doc)))
}

func TestValidateConfigJSON_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{"unknown provider", `{"provider": "mistral"}`, "provider"},
		{"unknown language", `{"language": "rust"}`, "language"},
		{"bad timeout", `{"timeout": "two minutes"}`, "timeout"},
		{"wrong type", `{"keep_steps": "yes"}`, "keep_steps"},
		{"zero file size", `{"max_file_size": 0}`, "max_file_size"},
		{"unknown key", `{"verbose": true}`, "(root)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConfigJSON([]byte(tt.doc))
			require.Error(t, err)

			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr), "error should be ValidationError type")
			require.NotEmpty(t, validationErr.Errors)
			assert.Equal(t, tt.field, validationErr.Errors[0].Field)
			assert.Contains(t, err.Error(), "validation failed")
		})
	}
}

func TestValidateConfig_GoDocument(t *testing.T) {
	assert.NoError(t, ValidateConfig(map[string]any{"model": "gemini-2.5-pro", "force": true}))

	err := ValidateConfig(map[string]any{"log_format": "xml"})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "log_format", validationErr.Errors[0].Field)
}

func TestValidateConfigJSON_Malformed(t *testing.T) {
	err := ValidateConfigJSON([]byte(`{ invalid json }`))
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestValidateJSONString(t *testing.T) {
	schema := `{"type": "object", "required": ["name"], "properties": {"name": {"type": "string"}}}`

	assert.NoError(t, ValidateJSONString(schema, `{"name": "demo"}`))

	err := ValidateJSONString(schema, `{}`)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "(root)", validationErr.Errors[0].Field)
}

func TestSchemaLoadError(t *testing.T) {
	cause := errors.New("bad ref")
	err := &SchemaLoadError{Path: "config.schema.json", Message: "load", Cause: cause}
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to load schema config.schema.json: load: bad ref", err.Error())

	noCause := &SchemaLoadError{Path: "x", Message: "missing"}
	assert.Equal(t, "failed to load schema x: missing", noCause.Error())
}
