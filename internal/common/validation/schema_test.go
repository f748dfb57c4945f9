package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() JSONSchema {
	return JSONSchema{
		Type:     "object",
		Required: []string{"query"},
		Properties: map[string]Property{
			"query": {Type: "string", MinLength: IntPtr(1), MaxLength: IntPtr(5)},
			"mode":  {Type: "string", Enum: []string{"fast", "slow"}},
		},
	}
}

func TestValidateInput(t *testing.T) {
	tests := []struct {
		name      string
		input     map[string]interface{}
		wantValid bool
		wantField string
		wantCode  string
	}{
		{name: "valid", input: map[string]interface{}{"query": "abc"}, wantValid: true},
		{name: "extra properties allowed", input: map[string]interface{}{"query": "a", "other": 1}, wantValid: true},
		{name: "missing required", input: map[string]interface{}{}, wantField: "query", wantCode: "REQUIRED"},
		{name: "nil input", input: nil, wantField: "query", wantCode: "REQUIRED"},
		{name: "wrong type", input: map[string]interface{}{"query": 7}, wantField: "query", wantCode: "INVALID_TYPE"},
		{name: "too long", input: map[string]interface{}{"query": "abcdef"}, wantField: "query", wantCode: "STRING_LTE"},
		{name: "enum", input: map[string]interface{}{"query": "a", "mode": "x"}, wantField: "mode", wantCode: "ENUM"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateInput(tt.input, testSchema())
			assert.Equal(t, tt.wantValid, res.Valid)
			if tt.wantValid {
				assert.Empty(t, res.Error())
				return
			}
			require.NotEmpty(t, res.Errors)
			assert.Equal(t, tt.wantField, res.Errors[0].Field)
			assert.Equal(t, tt.wantCode, res.Errors[0].Code)
			assert.Contains(t, res.Error(), tt.wantField)
		})
	}
}

func TestValidateInput_NoAdditionalProperties(t *testing.T) {
	schema := testSchema()
	schema.AdditionalProperties = BoolPtr(false)

	res := ValidateInput(map[string]interface{}{"query": "a", "other": 1}, schema)
	assert.False(t, res.Valid)
}
