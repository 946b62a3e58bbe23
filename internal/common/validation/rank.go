package validation

// RankRequestSchema is the JSON Schema of a rank-doctors request. Symptom values are
// booleans or objects with an optional severity; other scalars are tolerated and read as
// not selected.
const RankRequestSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["symptoms"],
	"properties": {
		"symptoms": {
			"type": "object",
			"additionalProperties": {
				"anyOf": [
					{"type": ["boolean", "number", "string", "null"]},
					{
						"type": "object",
						"properties": {
							"selected": {"type": "boolean"},
							"severity": {"enum": ["mild", "moderate", "severe"]}
						}
					}
				]
			}
		},
		"userId": {"type": "string"},
		"location": {"type": "string"}
	}
}`

var rankSchema = mustSchema(RankRequestSchema)

// ValidateRankRequest checks the raw job variables of a ranking request.
func ValidateRankRequest(variables string) *ValidationResult {
	return validate(rankSchema, variables)
}
