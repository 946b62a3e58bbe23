// internal/workers/triage/rank-doctors/models.go
package rankdoctors

import "doctor-ranking/internal/models"

type Input = models.RankingRequest

// Output flattens the ranking response into the process variables.
type Output struct {
	*models.RankingResponse
	AlertRequired bool `json:"alertRequired"`
}
