package validation

import (
	"strings"

	"go-recruiting-platform/pkg/apperror"

	"github.com/xeipuuv/gojsonschema"
)

// Schema is a compiled JSON schema used to reject request bodies carrying
// fields outside the allow-list before they are decoded.
type Schema struct {
	schema *gojsonschema.Schema
}

// MustSchema compiles src and panics on a malformed schema.
func MustSchema(src string) *Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic("validation: compile schema: " + err.Error())
	}
	return &Schema{schema: s}
}

// Validate checks body against the schema.
func (s *Schema) Validate(body []byte) error {
	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return apperror.BadRequest("Request body must be valid JSON")
	}
	if result.Valid() {
		return nil
	}
	details := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		field := e.Field()
		if field == "(root)" {
			field = "body"
		}
		details = append(details, field+": "+strings.TrimSuffix(e.Description(), "."))
	}
	return apperror.Validation("Validation failed", details...)
}

const brandingSchema = `{
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"logo": {"type": "string"},
		"primaryColor": {"type": "string"},
		"secondaryColor": {"type": "string"}
	}
}`

const settingsSchema = `{
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"allowPublicProfiles": {"type": "boolean"},
		"requireApproval": {"type": "boolean"}
	}
}`

var CreateTenantSchema = MustSchema(`{
	"type": "object",
	"additionalProperties": false,
	"required": ["name", "slug"],
	"properties": {
		"name": {"type": "string"},
		"slug": {"type": "string"},
		"branding": ` + brandingSchema + `,
		"settings": ` + settingsSchema + `
	}
}`)

var TenantPatchSchema = MustSchema(`{
	"type": "object",
	"additionalProperties": false,
	"minProperties": 1,
	"properties": {
		"name": {"type": "string"},
		"branding": ` + brandingSchema + `,
		"settings": ` + settingsSchema + `
	}
}`)

const salarySchema = `{
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"min": {"type": "number"},
		"max": {"type": "number"},
		"currency": {"type": "string"}
	}
}`

const jobProperties = `
		"title": {"type": "string"},
		"department": {"type": "string"},
		"location": {"type": "string"},
		"type": {"type": "string"},
		"remote": {"type": "boolean"},
		"skills": {"type": "array", "items": {"type": "string"}},
		"salaryRange": ` + salarySchema + `,
		"description": {"type": "string"},
		"requirements": {"type": "string"},
		"benefits": {"type": "string"},
		"status": {"type": "string"},
		"closeAt": {"type": ["string", "null"]}`

var CreateJobSchema = MustSchema(`{
	"type": "object",
	"additionalProperties": false,
	"properties": {` + jobProperties + `}
}`)

var JobPatchSchema = MustSchema(`{
	"type": "object",
	"additionalProperties": false,
	"minProperties": 1,
	"properties": {` + jobProperties + `}
}`)

var ProfilePatchSchema = MustSchema(`{
	"type": "object",
	"additionalProperties": false,
	"minProperties": 1,
	"properties": {
		"visibility": {"type": "string"},
		"sections": {
			"type": "object",
			"additionalProperties": false,
			"properties": {
				"personal": {
					"type": "object",
					"additionalProperties": false,
					"properties": {
						"firstName": {"type": "string"},
						"lastName": {"type": "string"},
						"email": {"type": "string"},
						"phone": {"type": "string"},
						"location": {"type": "string"},
						"summary": {"type": "string"}
					}
				},
				"education": {"type": "array", "items": {"type": "object"}},
				"experience": {"type": "array", "items": {"type": "object"}},
				"projects": {"type": "array", "items": {"type": "object"}},
				"skills": {"type": "array", "items": {"type": "object"}}
			}
		}
	}
}`)

var ApplicationPatchSchema = MustSchema(`{
	"type": "object",
	"additionalProperties": false,
	"minProperties": 1,
	"properties": {
		"status": {"type": "string"},
		"stage": {"type": "string"},
		"notes": {"type": "string"}
	}
}`)

var ApplySchema = MustSchema(`{
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"shareSet": {
			"type": "object",
			"additionalProperties": false,
			"properties": {
				"personal": {"type": "boolean"},
				"education": {"type": "boolean"},
				"experience": {"type": "boolean"},
				"projects": {"type": "boolean"},
				"skills": {"type": "boolean"}
			}
		}
	}
}`)
