// Package directory searches the Elasticsearch doctor directory.
package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"doctor-ranking/internal/common/logger"
	"doctor-ranking/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
)

var (
	ErrSearchFailed  = errors.New("DIRECTORY_SEARCH_FAILED")
	ErrSearchTimeout = errors.New("SEARCH_TIMEOUT")
	ErrIndexNotFound = errors.New("INDEX_NOT_FOUND")
)

const (
	DefaultPerSpecialist = 5
	DefaultMaxResults    = 15
	DefaultTimeout       = 10 * time.Second
)

type Config struct {
	Index         string
	PerSpecialist int
	MaxResults    int
	Timeout       time.Duration
}

type Service struct {
	config Config
	client *elasticsearch.Client
	logger logger.Logger
}

func NewService(config Config, client *elasticsearch.Client, log logger.Logger) *Service {
	if config.PerSpecialist <= 0 {
		config.PerSpecialist = DefaultPerSpecialist
	}
	if config.MaxResults <= 0 {
		config.MaxResults = DefaultMaxResults
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	return &Service{
		config: config,
		client: client,
		logger: log.WithFields(map[string]interface{}{"component": "directory", "index": config.Index}),
	}
}

// SearchBySpecialists queries each specialist in order, dedupes by doctor id and returns
// the best rated MaxResults. Any failure yields an empty list along with the error.
func (s *Service) SearchBySpecialists(ctx context.Context, specialists []string, location string) ([]models.Doctor, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	seen := make(map[string]bool)
	var all []models.Doctor
	for _, specialty := range unique(specialists) {
		found, err := s.search(ctx, specialty, location)
		if err != nil {
			s.logger.Warn("directory search failed", map[string]interface{}{
				"specialty": specialty,
				"error":     err.Error(),
			})
			return []models.Doctor{}, err
		}
		for _, d := range found {
			key := d.ID
			if key == "" {
				key = d.Name + "|" + d.Location
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			all = append(all, d)
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Rating > all[j].Rating
	})
	if len(all) > s.config.MaxResults {
		all = all[:s.config.MaxResults]
	}
	if all == nil {
		all = []models.Doctor{}
	}

	s.logger.Debug("directory search completed", map[string]interface{}{
		"specialists": specialists,
		"doctors":     len(all),
	})
	return all, nil
}

func (s *Service) search(ctx context.Context, specialty, location string) ([]models.Doctor, error) {
	req, err := BuildQuery(SpecialtyQuery{
		Index:     s.config.Index,
		Specialty: specialty,
		Location:  location,
		Size:      s.config.PerSpecialist,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrSearchTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, s.config.Index)
	}
	if res.IsError() {
		return nil, fmt.Errorf("%w: %s", ErrSearchFailed, res.String())
	}

	var r struct {
		Hits struct {
			Hits []struct {
				ID     string                 `json:"_id"`
				Source map[string]interface{} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrSearchFailed, err)
	}

	doctors := make([]models.Doctor, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		if hit.Source == nil {
			continue
		}
		_, hasID := hit.Source["id"]
		_, hasNPI := hit.Source["npi"]
		if !hasID && !hasNPI && hit.ID != "" {
			hit.Source["id"] = hit.ID
		}
		doctors = append(doctors, NormalizeDoctor(hit.Source))
	}
	return doctors, nil
}

// IndexDoctors bulk-indexes raw directory records, using their id or npi as document id,
// and returns how many were accepted.
func (s *Service) IndexDoctors(ctx context.Context, records []map[string]interface{}) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	var buf bytes.Buffer
	for _, rec := range records {
		meta := map[string]interface{}{"_index": s.config.Index}
		if id := NormalizeDoctor(rec).ID; id != "" {
			meta["_id"] = id
		}
		if err := json.NewEncoder(&buf).Encode(map[string]interface{}{"index": meta}); err != nil {
			return 0, err
		}
		if err := json.NewEncoder(&buf).Encode(rec); err != nil {
			return 0, err
		}
	}

	res, err := s.client.Bulk(&buf,
		s.client.Bulk.WithContext(ctx),
		s.client.Bulk.WithRefresh("wait_for"),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: bulk index: %v", ErrSearchFailed, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, fmt.Errorf("%w: bulk index: %s", ErrSearchFailed, res.String())
	}

	var r struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			Status int `json:"status"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, fmt.Errorf("%w: decode bulk response: %v", ErrSearchFailed, err)
	}

	indexed := 0
	for _, item := range r.Items {
		for _, result := range item {
			if result.Status >= 200 && result.Status < 300 {
				indexed++
			}
		}
	}
	if r.Errors {
		s.logger.Warn("bulk index partially failed", map[string]interface{}{
			"submitted": len(records),
			"indexed":   indexed,
		})
	}
	return indexed, nil
}

func unique(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}
