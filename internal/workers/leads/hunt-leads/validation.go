package huntleads

import "lead-hunter/internal/common/validation"

// Additional process variables are allowed: a job carries the whole scope.
func GetInputSchema() validation.JSONSchema {
	notBlank := validation.StringPtr(`\S`)
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"query", "city", "requesterId"},
		Properties: map[string]validation.Property{
			"query": {
				Type:        "string",
				Description: "Search term, e.g. a property type",
				MinLength:   validation.IntPtr(1),
				MaxLength:   validation.IntPtr(200),
				Pattern:     notBlank,
			},
			"city": {
				Type:        "string",
				Description: "Location the term is combined with",
				MinLength:   validation.IntPtr(1),
				MaxLength:   validation.IntPtr(100),
				Pattern:     notBlank,
			},
			"requesterId": {
				Type:        "string",
				Description: "User the created leads are attributed to",
				MinLength:   validation.IntPtr(1),
				MaxLength:   validation.IntPtr(100),
			},
		},
	}
}
