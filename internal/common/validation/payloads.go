package validation

// RatingSubmissionSchema describes the submit-doctor-rating job variables.
const RatingSubmissionSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["doctorId", "rating"],
	"properties": {
		"doctorId": {"type": "string", "minLength": 1},
		"rating": {"type": "integer", "minimum": 1, "maximum": 5},
		"review": {"type": "string", "maxLength": 2000},
		"userName": {"type": "string", "maxLength": 255},
		"userId": {"type": "string"},
		"specialty": {"type": "string"},
		"doctor": {"type": "object"}
	}
}`

// PreferenceUpdateSchema describes the update-user-preferences job variables.
const PreferenceUpdateSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["userId", "doctorId", "rating", "specialty"],
	"properties": {
		"userId": {"type": "string", "minLength": 1},
		"doctorId": {"type": "string", "minLength": 1},
		"rating": {"type": "number", "minimum": 1, "maximum": 5},
		"specialty": {"type": "string", "minLength": 1},
		"doctor": {"type": "object"}
	}
}`

var (
	ratingSchema     = mustSchema(RatingSubmissionSchema)
	preferenceSchema = mustSchema(PreferenceUpdateSchema)
)

// ValidateRatingSubmission checks the raw job variables of a rating submission.
func ValidateRatingSubmission(variables string) *ValidationResult {
	return validate(ratingSchema, variables)
}

// ValidatePreferenceUpdate checks the raw job variables of a preference update.
func ValidatePreferenceUpdate(variables string) *ValidationResult {
	return validate(preferenceSchema, variables)
}
