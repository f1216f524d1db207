package backend

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

const searchResponseSchema = `{
	"type": "object",
	"required": ["status"],
	"properties": {
		"status": {"type": "string"},
		"results": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["scheme_name", "category", "details", "score"],
				"properties": {
					"scheme_name": {"type": "string"},
					"category": {"type": "string"},
					"details": {"type": "string"},
					"score": {"type": "number"},
					"benefits": {"type": "string"},
					"eligibility_text": {"type": "string"},
					"application_steps": {"type": "string"}
				}
			}
		}
	}
}`

const verifyResponseSchema = `{
	"type": "object",
	"required": ["verdict", "reasons"],
	"properties": {
		"verdict": {"type": "string", "enum": ["ELIGIBLE", "NOT_ELIGIBLE", "NOT ELIGIBLE"]},
		"reasons": {"type": "array", "items": {"type": "string"}},
		"scheme_details": {
			"type": ["object", "null"],
			"properties": {
				"benefits": {"type": "string"},
				"documents": {"type": "string"},
				"application": {"type": "string"}
			}
		}
	}
}`

const healthResponseSchema = `{
	"type": "object",
	"required": ["status"],
	"properties": {
		"status": {"type": "string"}
	}
}`

var (
	searchSchema = mustCompile("search", searchResponseSchema)
	verifySchema = mustCompile("verify", verifyResponseSchema)
	healthSchema = mustCompile("health", healthResponseSchema)
)

func mustCompile(name, raw string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
	if err != nil {
		panic(fmt.Errorf("compile %s response schema: %w", name, err))
	}
	return schema
}

func validate(endpoint string, schema *gojsonschema.Schema, body []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return &contractError{endpoint: endpoint, problems: []string{err.Error()}}
	}

	if !result.Valid() {
		problems := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			problems[i] = desc.String()
		}
		return &contractError{endpoint: endpoint, problems: problems}
	}

	return nil
}
