package directory

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var (
	ErrMissingIndex     = errors.New("index name is required")
	ErrMissingSpecialty = errors.New("specialty is required")
)

// SpecialtyQuery describes one directory search.
type SpecialtyQuery struct {
	Index     string
	Specialty string
	Location  string
	Size      int
}

// DoctorIndexMapping is the mapping the directory index is created with.
const DoctorIndexMapping = `{
	"mappings": {
		"properties": {
			"id":          {"type": "keyword"},
			"npi":         {"type": "keyword"},
			"name":        {"type": "text"},
			"specialties": {"type": "text", "fields": {"raw": {"type": "keyword"}}},
			"gender":      {"type": "keyword"},
			"rating":      {"type": "float"},
			"credentials": {"type": "keyword"},
			"hospital":    {"type": "text"},
			"organization":{"type": "text"},
			"address": {
				"properties": {
					"firstLine":  {"type": "text"},
					"secondLine": {"type": "text"},
					"city":       {"type": "text", "fields": {"raw": {"type": "keyword"}}},
					"state":      {"type": "keyword"},
					"postalCode": {"type": "keyword"}
				}
			}
		}
	}
}`

// BuildQuery builds the search request for one specialty.
func BuildQuery(q SpecialtyQuery) (*esapi.SearchRequest, error) {
	if q.Index == "" {
		return nil, ErrMissingIndex
	}
	if strings.TrimSpace(q.Specialty) == "" {
		return nil, ErrMissingSpecialty
	}

	body, err := json.Marshal(buildSpecialtyQuery(q))
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	size := q.Size
	return &esapi.SearchRequest{
		Index: []string{q.Index},
		Body:  strings.NewReader(string(body)),
		Size:  &size,
	}, nil
}

func buildSpecialtyQuery(q SpecialtyQuery) map[string]interface{} {
	mustClauses := []interface{}{
		map[string]interface{}{
			"match": map[string]interface{}{
				"specialties": map[string]interface{}{
					"query":    q.Specialty,
					"operator": "and",
				},
			},
		},
	}

	filterClauses := []interface{}{}
	if city, state := splitLocation(q.Location); city != "" || state != "" {
		if city != "" {
			filterClauses = append(filterClauses, map[string]interface{}{
				"match": map[string]interface{}{"address.city": city},
			})
		}
		if state != "" {
			filterClauses = append(filterClauses, map[string]interface{}{
				"term": map[string]interface{}{"address.state": strings.ToUpper(state)},
			})
		}
	}

	boolQuery := map[string]interface{}{"must": mustClauses}
	if len(filterClauses) > 0 {
		boolQuery["filter"] = filterClauses
	}

	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"sort": []interface{}{
			map[string]interface{}{"rating": map[string]interface{}{"order": "desc", "missing": "_last"}},
			"_score",
		},
	}
}

// splitLocation reads "City, ST". A value without a comma is treated as a city.
func splitLocation(location string) (city, state string) {
	parts := strings.Split(location, ",")
	city = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		state = strings.TrimSpace(parts[1])
	}
	return city, state
}
