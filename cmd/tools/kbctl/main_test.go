package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doctor-ranking/pkg/registry"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestExportThenValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kb.json")

	out, err := run(t, "export", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	kb, err := registry.LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, len(registry.Default().Specialists), len(kb.Specialists))

	out, err = run(t, "validate", "--path", path)
	require.NoError(t, err)
	assert.Contains(t, out, "knowledge base OK")
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed json", `{"symptomWeights":`},
		{"weight out of range", `{"symptomWeights": {"fever": 1.5}}`},
		{"unknown urgency class", `{"symptomUrgency": {"rash": "whenever"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "kb.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := run(t, "validate", "--path", path)
			assert.Error(t, err)
		})
	}
}

func TestValidate_MissingFile(t *testing.T) {
	_, err := run(t, "validate", "--path", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestReadRecords(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "doctors.json")
	require.NoError(t, os.WriteFile(good, []byte(`[{"npi": "1234567890", "name": "Dr. Ada"}, {"id": "d2"}]`), 0o644))
	records, err := readRecords(good)
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, "Dr. Ada", records[0]["name"])

	bad := filepath.Join(dir, "object.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"npi": "1"}`), 0o644))
	_, err = readRecords(bad)
	assert.Error(t, err)
}

func TestMigrateDown_RejectsNonPositiveSteps(t *testing.T) {
	_, err := run(t, "migrate", "down", "--steps", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "steps must be positive")
}
