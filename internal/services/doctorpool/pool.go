// Package doctorpool serves the bundled NPI registry extract used when the directory
// returns too few doctors.
package doctorpool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"doctor-ranking/internal/models"
)

var ErrPoolUnavailable = errors.New("DOCTOR_POOL_UNAVAILABLE")

// Record is one provider entry of the registry extract.
type Record struct {
	Number     json.Number `json:"number"`
	Basic      Basic       `json:"basic"`
	Taxonomies []Taxonomy  `json:"taxonomies"`
	Addresses  []Address   `json:"addresses"`
}

type Basic struct {
	OrganizationName string `json:"organization_name"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Credential       string `json:"credential"`
	Gender           string `json:"gender"`
}

type Taxonomy struct {
	Desc    string `json:"desc"`
	Primary bool   `json:"primary"`
}

type Address struct {
	Purpose  string `json:"address_purpose"`
	Address1 string `json:"address_1"`
	City     string `json:"city"`
	State    string `json:"state"`
	Phone    string `json:"telephone_number"`
}

// Pool is an immutable, in-memory list of doctors.
type Pool struct {
	doctors []models.Doctor
}

// Load reads a registry extract. The file is either a list of records or a list of
// [query, {"results": [records]}] pairs.
func Load(path string) (*Pool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPoolUnavailable, err)
	}
	records, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrPoolUnavailable, path, err)
	}
	return New(records), nil
}

func New(records []Record) *Pool {
	doctors := make([]models.Doctor, 0, len(records))
	for _, r := range records {
		if d, ok := r.Doctor(); ok {
			doctors = append(doctors, d)
		}
	}
	return &Pool{doctors: doctors}
}

func (p *Pool) Len() int { return len(p.doctors) }

// Doctors returns a copy of every doctor in the pool.
func (p *Pool) Doctors() []models.Doctor {
	return append([]models.Doctor{}, p.doctors...)
}

// BySpecialty returns the doctors whose taxonomy matches specialty.
func (p *Pool) BySpecialty(_ context.Context, specialty string) ([]models.Doctor, error) {
	out := make([]models.Doctor, 0)
	for _, d := range p.doctors {
		if Matches(d.Specialty, specialty) {
			out = append(out, d)
		}
	}
	return out, nil
}

// Matches reports whether a taxonomy description serves the wanted specialty: a
// case-insensitive substring match, with every dental specialty served by any dentist.
func Matches(taxonomy, wanted string) bool {
	if taxonomy == "" {
		return false
	}
	tax := strings.ToLower(taxonomy)
	want := strings.ToLower(strings.TrimSpace(wanted))

	if strings.Contains(tax, want) {
		return true
	}
	dental := strings.Contains(want, "dentist") || want == "dentistry" || want == "emergency dentistry"
	return dental && strings.Contains(tax, "dentist")
}

// Doctor converts the record; records without a taxonomy are skipped.
func (r Record) Doctor() (models.Doctor, bool) {
	taxonomy := r.primaryTaxonomy()
	if taxonomy == "" {
		return models.Doctor{}, false
	}

	name := r.Basic.OrganizationName
	if name == "" && r.Basic.FirstName != "" {
		name = strings.TrimSpace(r.Basic.FirstName + " " + r.Basic.LastName)
	}

	var location, phone string
	for _, a := range r.Addresses {
		if a.Purpose == "LOCATION" {
			location = strings.Join(strings.Fields(a.Address1+" "+a.City+" "+a.State), " ")
			phone = a.Phone
			break
		}
	}

	return models.Doctor{
		ID:          r.Number.String(),
		NPI:         r.Number.String(),
		Name:        name,
		Specialty:   taxonomy,
		Location:    location,
		Gender:      r.Basic.Gender,
		Credentials: r.Basic.Credential,
		Phone:       phone,
		Source:      models.SourceLocalPool,
	}, true
}

func (r Record) primaryTaxonomy() string {
	for _, t := range r.Taxonomies {
		if t.Primary {
			return t.Desc
		}
	}
	if len(r.Taxonomies) > 0 {
		return r.Taxonomies[0].Desc
	}
	return ""
}

func decode(data []byte) ([]Record, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	var records []Record
	for _, entry := range entries {
		var pair []json.RawMessage
		if err := json.Unmarshal(entry, &pair); err == nil {
			if len(pair) < 2 {
				continue
			}
			var page struct {
				Results []Record `json:"results"`
			}
			if err := json.Unmarshal(pair[1], &page); err != nil {
				continue
			}
			records = append(records, page.Results...)
			continue
		}

		var rec Record
		if err := json.Unmarshal(entry, &rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
