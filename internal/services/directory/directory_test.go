package directory

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"doctor-ranking/internal/common/logger"
	"doctor-ranking/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeES struct {
	mu       sync.Mutex
	queries  []map[string]interface{}
	bySpec   map[string][]map[string]interface{}
	status   int
	bulkBody []string
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	if f.status != 0 {
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(`{"error":{"type":"index_not_found_exception"},"status":404}`))
		return
	}

	switch {
	case strings.HasSuffix(r.URL.Path, "/_search"):
		var q map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&q)
		f.mu.Lock()
		f.queries = append(f.queries, q)
		f.mu.Unlock()

		spec := specialtyOf(q)
		hits := make([]map[string]interface{}, 0)
		for i, src := range f.bySpec[spec] {
			hits = append(hits, map[string]interface{}{"_id": "hit-" + spec + string(rune('a'+i)), "_source": src})
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"hits": map[string]interface{}{"total": map[string]interface{}{"value": len(hits)}, "hits": hits},
		})

	case strings.HasSuffix(r.URL.Path, "/_bulk"):
		scanner := bufio.NewScanner(r.Body)
		var items []map[string]interface{}
		for scanner.Scan() {
			line := scanner.Text()
			f.bulkBody = append(f.bulkBody, line)
			if strings.HasPrefix(line, `{"index"`) {
				items = append(items, map[string]interface{}{"index": map[string]interface{}{"status": 201}})
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"errors": false, "items": items})

	default:
		_, _ = io.WriteString(w, `{}`)
	}
}

func specialtyOf(q map[string]interface{}) string {
	must := q["query"].(map[string]interface{})["bool"].(map[string]interface{})["must"].([]interface{})
	match := must[0].(map[string]interface{})["match"].(map[string]interface{})
	return match["specialties"].(map[string]interface{})["query"].(string)
}

func newTestService(t *testing.T, es *fakeES, cfg Config) *Service {
	t.Helper()
	srv := httptest.NewServer(es)
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	if cfg.Index == "" {
		cfg.Index = "doctors"
	}
	return NewService(cfg, client, logger.NewTestLogger(t))
}

func TestSearchBySpecialists_DedupesAndSortsByRating(t *testing.T) {
	es := &fakeES{bySpec: map[string][]map[string]interface{}{
		"Dermatology": {
			{"id": "1", "name": "Dr. A", "specialties": []interface{}{"Dermatology"}, "rating": 4.1},
			{"id": "2", "name": "Dr. B", "specialties": []interface{}{"Dermatology"}, "rating": "4.8"},
		},
		"Allergy & Immunology": {
			{"id": "2", "name": "Dr. B", "specialties": []interface{}{"Dermatology"}, "rating": 4.8},
			{"npi": 1234567890.0, "name": "Dr. C", "specialties": []interface{}{"Allergy & Immunology"}, "rating": 4.5},
		},
	}}
	svc := newTestService(t, es, Config{})

	got, err := svc.SearchBySpecialists(context.Background(), []string{"Dermatology", "Allergy & Immunology", "Dermatology"}, "")

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"Dr. B", "Dr. C", "Dr. A"}, []string{got[0].Name, got[1].Name, got[2].Name})
	assert.Equal(t, "1234567890", got[1].ID)
	assert.Len(t, es.queries, 2, "duplicate specialists are searched once")
}

func TestSearchBySpecialists_CapsResults(t *testing.T) {
	var docs []map[string]interface{}
	for i := 0; i < 5; i++ {
		docs = append(docs, map[string]interface{}{"id": string(rune('a' + i)), "name": "Dr", "specialties": []interface{}{"ENT"}})
	}
	es := &fakeES{bySpec: map[string][]map[string]interface{}{"ENT": docs}}
	svc := newTestService(t, es, Config{MaxResults: 3})

	got, err := svc.SearchBySpecialists(context.Background(), []string{"ENT"}, "")

	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestSearchBySpecialists_LocationFilter(t *testing.T) {
	es := &fakeES{bySpec: map[string][]map[string]interface{}{}}
	svc := newTestService(t, es, Config{PerSpecialist: 7})

	_, err := svc.SearchBySpecialists(context.Background(), []string{"Neurology"}, "Austin, tx")
	require.NoError(t, err)

	require.Len(t, es.queries, 1)
	filter := es.queries[0]["query"].(map[string]interface{})["bool"].(map[string]interface{})["filter"].([]interface{})
	require.Len(t, filter, 2)
	assert.Equal(t, "Austin", filter[0].(map[string]interface{})["match"].(map[string]interface{})["address.city"])
	assert.Equal(t, "TX", filter[1].(map[string]interface{})["term"].(map[string]interface{})["address.state"])
}

func TestSearchBySpecialists_ErrorReturnsEmpty(t *testing.T) {
	svc := newTestService(t, &fakeES{status: http.StatusNotFound}, Config{})

	got, err := svc.SearchBySpecialists(context.Background(), []string{"Neurology"}, "")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIndexNotFound))
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestIndexDoctors(t *testing.T) {
	es := &fakeES{}
	svc := newTestService(t, es, Config{})

	n, err := svc.IndexDoctors(context.Background(), []map[string]interface{}{
		{"id": "d1", "name": "Dr. One"},
		{"npi": "42", "name": "Dr. Two"},
	})

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, es.bulkBody, 4)
	assert.Contains(t, es.bulkBody[0], `"_id":"d1"`)
	assert.Contains(t, es.bulkBody[2], `"_id":"42"`)
}

func TestBuildQuery_Validation(t *testing.T) {
	_, err := BuildQuery(SpecialtyQuery{Specialty: "ENT"})
	assert.True(t, errors.Is(err, ErrMissingIndex))

	_, err = BuildQuery(SpecialtyQuery{Index: "doctors", Specialty: " "})
	assert.True(t, errors.Is(err, ErrMissingSpecialty))

	req, err := BuildQuery(SpecialtyQuery{Index: "doctors", Specialty: "ENT", Size: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, *req.Size)
	assert.Equal(t, []string{"doctors"}, req.Index)
}

func TestNormalizeDoctor(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]interface{}
		want models.Doctor
	}{
		{
			name: "empty record gets defaults",
			raw:  map[string]interface{}{},
			want: models.Doctor{
				Name:         "Dr. Unknown",
				Specialty:    "General Practice",
				Location:     "Location not specified",
				Experience:   "Not specified",
				Hospital:     "Private Practice",
				Phone:        "Contact for phone",
				Email:        "Contact for email",
				Address:      "Address not available",
				Availability: "Contact for availability",
				Source:       models.SourceDirectory,
			},
		},
		{
			name: "full record",
			raw: map[string]interface{}{
				"npi":          "99",
				"name":         "Dr. Full",
				"specialties":  []interface{}{"Dermatology", "Allergy"},
				"rating":       4.6,
				"gender":       "F",
				"organization": "Skin Clinic",
				"phone":        "555",
				"address": map[string]interface{}{
					"firstLine": "1 Main St", "city": "Austin", "state": "TX", "postalCode": "78701",
				},
			},
			want: models.Doctor{
				ID:           "99",
				NPI:          "99",
				Name:         "Dr. Full",
				Specialty:    "Dermatology",
				Specialties:  []string{"Dermatology", "Allergy"},
				Location:     "Austin, TX",
				Rating:       4.6,
				Gender:       "F",
				Experience:   "Not specified",
				Hospital:     "Skin Clinic",
				Phone:        "555",
				Email:        "Contact for email",
				Address:      "1 Main St, Austin, TX, 78701",
				Availability: "Contact for availability",
				Source:       models.SourceDirectory,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDoctor(tt.raw))
		})
	}
}

func TestNormalizeDoctor_LocationFromFirstLine(t *testing.T) {
	d := NormalizeDoctor(map[string]interface{}{"address": map[string]interface{}{"firstLine": "Clinic Road", "city": "Lagos"}})
	assert.Equal(t, "Clinic Road", d.Location)
	assert.Equal(t, "Clinic Road, Lagos", d.Address)
}
