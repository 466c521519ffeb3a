package dataimport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTexts(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    []string
	}{
		{"csv", "in.csv", "id,Text\n1,hello\n2,\n3,world\n", []string{"hello", "world"}},
		{"json strings", "in.json", `["a", "b"]`, []string{"a", "b"}},
		{"json objects", "in.json", `[{"text": "a"}, {"label": "b"}]`, []string{"a", "b"}},
		{"yaml strings", "in.yaml", "- a\n- b\n", []string{"a", "b"}},
		{"yaml objects", "in.yml", "- text: a\n- text: b\n", []string{"a", "b"}},
		{"plain lines", "in.txt", "first line\n\n  second line  \n", []string{"first line", "second line"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			texts, err := LoadTexts(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.want, texts)
		})
	}
}

func TestLoadTexts_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{"csv without text column", "in.csv", "id,body\n1,x\n", "missing 'text' column"},
		{"empty csv", "in.csv", "", "empty"},
		{"object without text", "in.json", `[{"id": "1"}]`, "entry 0 missing text"},
		{"malformed json", "in.json", `{`, "expected a list"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadTexts(writeFile(t, tt.file, tt.content))
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoadRecords_JSON(t *testing.T) {
	path := writeFile(t, "records.json", `[
		{"id": "r1", "text": "cat", "vector": [1, 0], "created_at": "2024-05-01T10:00:00Z"},
		{"label": "dog", "vector": [0, 1]}
	]`)

	records, err := LoadRecords(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "r1", records[0].ID)
	assert.Equal(t, "cat", records[0].Label)
	assert.Equal(t, []float64{1, 0}, records[0].Vector)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), records[0].CreatedAt)

	assert.Equal(t, "dog", records[1].Label)
	_, err = uuid.Parse(records[1].ID)
	assert.NoError(t, err, "missing id is replaced by a UUID")
}

func TestLoadRecords_YAML(t *testing.T) {
	path := writeFile(t, "records.yaml", "- text: cat\n  vector: [1, 2, 3]\n")

	records, err := LoadRecords(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []float64{1, 2, 3}, records[0].Vector)
}

func TestLoadRecords_CSV(t *testing.T) {
	path := writeFile(t, "records.csv", strings.Join([]string{
		"id,text,vector,created_at",
		"a,cat,0.5 0.25,2024-01-02T03:04:05Z",
		"b,dog,1;2,",
	}, "\n"))

	records, err := LoadRecords(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []float64{0.5, 0.25}, records[0].Vector)
	assert.Equal(t, 2024, records[0].CreatedAt.Year())
	assert.Equal(t, []float64{1, 2}, records[1].Vector)
	assert.True(t, records[1].CreatedAt.IsZero())
}

func TestLoadRecords_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{"missing vector", "in.json", `[{"text": "cat"}]`, "entry 0 missing vector"},
		{"missing text", "in.json", `[{"vector": [1]}]`, "entry 0 missing text"},
		{"csv without vector column", "in.csv", "text\ncat\n", "missing 'vector' column"},
		{"bad csv vector", "in.csv", "text,vector\ncat,1 x\n", "row 1"},
		{"unsupported", "in.txt", "cat", "unsupported file format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRecords(writeFile(t, tt.file, tt.content))
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestParseVector(t *testing.T) {
	tests := []struct {
		in   string
		want []float64
	}{
		{"1 2 3", []float64{1, 2, 3}},
		{"1;2;3", []float64{1, 2, 3}},
		{"[0.5, -1]", []float64{0.5, -1}},
		{"", []float64{}},
	}

	for _, tt := range tests {
		got, err := ParseVector(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseVector("1 two")
	assert.Error(t, err)
}
