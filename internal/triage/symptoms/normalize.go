// Package symptoms canonicalizes patient-supplied symptom keys into the oracle vocabulary.
package symptoms

import (
	"regexp"
	"sort"
	"strings"

	"doctor-ranking/internal/models"
)

// FollowUpKey holds questionnaire answers submitted alongside the symptoms. It is never a
// symptom itself.
const FollowUpKey = "followUpAnswers"

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	disallowed    = regexp.MustCompile(`[^a-z0-9_]`)
)

// NormalizeKey lowercases key, turns whitespace runs into "_", drops characters outside
// [a-z0-9_] and trims leading and trailing underscores.
func NormalizeKey(key string) string {
	k := strings.ToLower(key)
	k = whitespaceRun.ReplaceAllString(k, "_")
	k = disallowed.ReplaceAllString(k, "")
	return strings.Trim(k, "_")
}

// Normalize returns a copy of raw with every key normalized. When two keys collapse onto
// the same canonical key the selected one wins. FollowUpKey is kept verbatim.
func Normalize(raw models.Symptoms) models.Symptoms {
	out := make(models.Symptoms, len(raw))
	for _, key := range sortedKeys(raw) {
		value := raw[key]
		if key == FollowUpKey {
			out[key] = value
			continue
		}
		nk := NormalizeKey(key)
		if existing, ok := out[nk]; ok && existing.Selected && !value.Selected {
			continue
		}
		out[nk] = value
	}
	return out
}

// Selected returns the sorted keys of every selected symptom.
func Selected(s models.Symptoms) []string {
	keys := make([]string, 0, len(s))
	for key, value := range s {
		if value.Selected && key != FollowUpKey {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// SelectedOnly drops unselected entries and the follow-up answers.
func SelectedOnly(s models.Symptoms) models.Symptoms {
	out := make(models.Symptoms, len(s))
	for _, key := range Selected(s) {
		out[key] = s[key]
	}
	return out
}

// Count counts every submitted key except the follow-up answers.
func Count(s models.Symptoms) int {
	n := 0
	for key := range s {
		if key != FollowUpKey {
			n++
		}
	}
	return n
}

// CountWithSeverity counts symptoms that carry a severity, selected or not.
func CountWithSeverity(s models.Symptoms) int {
	n := 0
	for key, value := range s {
		if key != FollowUpKey && value.Severity != "" {
			n++
		}
	}
	return n
}

func sortedKeys(s models.Symptoms) []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
