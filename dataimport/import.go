// Package dataimport reads texts and pre-embedded records from local files.
package dataimport

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/alDuncanson/embscope/analysis"
)

// ErrUnsupportedFormat is returned for file extensions no loader handles.
var ErrUnsupportedFormat = errors.New("unsupported file format")

type textObject struct {
	ID        string    `json:"id" yaml:"id"`
	Text      string    `json:"text" yaml:"text"`
	Label     string    `json:"label" yaml:"label"`
	Vector    []float64 `json:"vector,omitempty" yaml:"vector,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

func (o textObject) label() string {
	if o.Label != "" {
		return o.Label
	}
	return o.Text
}

// LoadTexts reads texts to embed. CSV files need a "text" column, JSON and YAML files hold
// a list of strings or of objects with a "text" or "label" field, and anything else is read
// as one text per non-blank line.
func LoadTexts(path string) ([]string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return loadCSVTexts(path)
	case ".json":
		return loadStructuredTexts(path, json.Unmarshal)
	case ".yaml", ".yml":
		return loadStructuredTexts(path, yaml.Unmarshal)
	default:
		return loadLines(path)
	}
}

// LoadRecords reads pre-embedded records. Every entry needs a vector; entries without an
// id get a random UUID.
func LoadRecords(path string) ([]analysis.Record, error) {
	var objects []textObject
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json", ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading file: %w", err)
		}
		unmarshal := yaml.Unmarshal
		if ext == ".json" {
			unmarshal = json.Unmarshal
		}
		if err := unmarshal(data, &objects); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", ext, err)
		}
	case ".csv":
		var err error
		if objects, err = loadCSVObjects(path); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	records := make([]analysis.Record, 0, len(objects))
	for i, obj := range objects {
		label := obj.label()
		if label == "" {
			return nil, fmt.Errorf("entry %d missing text field", i)
		}
		if len(obj.Vector) == 0 {
			return nil, fmt.Errorf("entry %d missing vector field", i)
		}
		id := obj.ID
		if id == "" {
			id = uuid.NewString()
		}
		records = append(records, analysis.Record{
			ID:        id,
			Label:     label,
			Vector:    obj.Vector,
			CreatedAt: obj.CreatedAt,
		})
	}
	return records, nil
}

// ParseVector reads a vector written as numbers separated by spaces, commas or semicolons,
// optionally wrapped in brackets.
func ParseVector(s string) ([]float64, error) {
	s = strings.Trim(strings.TrimSpace(s), "[]")
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ';' || r == ',' || r == '\t'
	})

	vector := make([]float64, len(fields))
	for i, field := range fields {
		value, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("vector component %d: %w", i, err)
		}
		vector[i] = value
	}
	return vector, nil
}

func readCSV(path string) ([][]string, map[string]int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening CSV file: %w", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("CSV file is empty")
	}

	columns := make(map[string]int, len(records[0]))
	for i, header := range records[0] {
		columns[strings.ToLower(strings.TrimSpace(header))] = i
	}
	if _, ok := columns["text"]; !ok {
		return nil, nil, fmt.Errorf("CSV missing 'text' column header")
	}
	return records[1:], columns, nil
}

func cell(row []string, columns map[string]int, name string) string {
	i, ok := columns[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func loadCSVTexts(path string) ([]string, error) {
	rows, columns, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	texts := make([]string, 0, len(rows))
	for _, row := range rows {
		if text := cell(row, columns, "text"); text != "" {
			texts = append(texts, text)
		}
	}
	return texts, nil
}

func loadCSVObjects(path string) ([]textObject, error) {
	rows, columns, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	if _, ok := columns["vector"]; !ok {
		return nil, fmt.Errorf("CSV missing 'vector' column header")
	}

	objects := make([]textObject, 0, len(rows))
	for i, row := range rows {
		vector, err := ParseVector(cell(row, columns, "vector"))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		obj := textObject{
			ID:     cell(row, columns, "id"),
			Text:   cell(row, columns, "text"),
			Label:  cell(row, columns, "label"),
			Vector: vector,
		}
		if created := cell(row, columns, "created_at"); created != "" {
			if obj.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
				return nil, fmt.Errorf("row %d: created_at: %w", i+1, err)
			}
		}
		objects = append(objects, obj)
	}
	return objects, nil
}

func loadStructuredTexts(path string, unmarshal func([]byte, any) error) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	var stringArray []string
	if err := unmarshal(data, &stringArray); err == nil {
		return stringArray, nil
	}

	var objectArray []textObject
	if err := unmarshal(data, &objectArray); err != nil {
		return nil, fmt.Errorf("expected a list of strings or objects with a 'text' field: %w", err)
	}

	texts := make([]string, 0, len(objectArray))
	for i, obj := range objectArray {
		text := obj.Text
		if text == "" {
			text = obj.Label
		}
		if text == "" {
			return nil, fmt.Errorf("entry %d missing text field", i)
		}
		texts = append(texts, text)
	}
	return texts, nil
}

func loadLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()
	return ReadLines(file)
}

// ReadLines returns the trimmed, non-blank lines of r.
func ReadLines(r io.Reader) ([]string, error) {
	var texts []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			texts = append(texts, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading lines: %w", err)
	}
	return texts, nil
}
