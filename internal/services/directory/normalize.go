package directory

import (
	"fmt"
	"strconv"
	"strings"

	"doctor-ranking/internal/models"
)

// NormalizeDoctor maps a raw directory record onto models.Doctor, filling the display
// defaults for missing fields. A missing rating stays 0 so the ranking falls back to
// stored statistics or its own default.
func NormalizeDoctor(raw map[string]interface{}) models.Doctor {
	id := str(raw["id"])
	npi := str(raw["npi"])
	if id == "" {
		id = npi
	}

	specialties := strList(raw["specialties"])
	specialty := "General Practice"
	if len(specialties) > 0 {
		specialty = specialties[0]
	} else if s := str(raw["specialties"]); s != "" {
		specialty = s
		specialties = []string{s}
	}

	address, _ := raw["address"].(map[string]interface{})

	return models.Doctor{
		ID:           id,
		NPI:          npi,
		Name:         orDefault(str(raw["name"]), "Dr. Unknown"),
		Specialty:    specialty,
		Specialties:  specialties,
		Location:     formatLocation(address),
		Rating:       number(raw["rating"]),
		Gender:       str(raw["gender"]),
		Experience:   orDefault(str(raw["experience"]), "Not specified"),
		Credentials:  str(raw["credentials"]),
		Hospital:     orDefault(str(raw["hospital"]), orDefault(str(raw["organization"]), "Private Practice")),
		Phone:        orDefault(str(raw["phone"]), "Contact for phone"),
		Email:        orDefault(str(raw["email"]), "Contact for email"),
		Address:      formatAddress(address),
		Availability: orDefault(str(raw["availability"]), "Contact for availability"),
		Source:       models.SourceDirectory,
	}
}

func formatLocation(addr map[string]interface{}) string {
	if addr != nil {
		city, state := str(addr["city"]), str(addr["state"])
		if city != "" && state != "" {
			return city + ", " + state
		}
		if first := str(addr["firstLine"]); first != "" {
			return first
		}
	}
	return "Location not specified"
}

func formatAddress(addr map[string]interface{}) string {
	if addr == nil {
		return "Address not available"
	}
	var parts []string
	for _, key := range []string{"firstLine", "secondLine", "city", "state", "postalCode"} {
		if v := str(addr[key]); v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return "Address not available"
	}
	return strings.Join(parts, ", ")
}

func str(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

func strList(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := str(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func number(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err == nil {
			return f
		}
	}
	return 0
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
