package llm

// BuildOutlineJSONSchema returns a JSON-Schema (draft 2020-12 subset) as
// a generic map. We pass it to the model as a structured output
// constraint and also use it locally to validate the response.
func BuildOutlineJSONSchema(chapters int) map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"title": map[string]any{"type": "string", "minLength": 1},
			"chapters": map[string]any{
				"type":     "array",
				"minItems": chapters,
				"maxItems": chapters,
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"properties": map[string]any{
						"title":   map[string]any{"type": "string", "minLength": 1},
						"summary": map[string]any{"type": "string", "minLength": 1},
					},
					"required": []string{"title", "summary"},
				},
			},
		},
		"required": []string{"title", "chapters"},
	}
}

// BuildChapterJSONSchema constrains the chapter writer's response.
func BuildChapterJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"content": map[string]any{"type": "string", "minLength": 1},
		},
		"required": []string{"content"},
	}
}
