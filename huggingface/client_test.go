package huggingface

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
)

func TestSplitsResponseParsing(t *testing.T) {
	jsonData := `{"splits":[{"dataset":"test/dataset","config":"default","split":"train"},{"dataset":"test/dataset","config":"default","split":"test"}]}`

	var resp SplitsResponse
	if err := json.Unmarshal([]byte(jsonData), &resp); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if len(resp.Splits) != 2 {
		t.Errorf("expected 2 splits, got %d", len(resp.Splits))
	}

	if resp.Splits[0].Config != "default" {
		t.Errorf("expected config 'default', got %s", resp.Splits[0].Config)
	}
}

// newDatasetServer serves a dataset of total rows whose "text" column is "row N".
func newDatasetServer(t *testing.T, total int) (*httptest.Server, func() []int) {
	t.Helper()
	var (
		mu      sync.Mutex
		offsets []int
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/splits":
			fmt.Fprint(w, `{"splits":[{"dataset":"d","config":"default","split":"train"}]}`)
		case "/rows":
			if r.URL.Query().Get("config") != "default" || r.URL.Query().Get("split") != "train" {
				t.Errorf("unexpected query %s", r.URL.RawQuery)
			}
			offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
			length, _ := strconv.Atoi(r.URL.Query().Get("length"))
			mu.Lock()
			offsets = append(offsets, offset)
			mu.Unlock()

			var resp RowsResponse
			for i := offset; i < offset+length && i < total; i++ {
				row := map[string]any{"text": fmt.Sprintf("row %d", i), "label": i % 2}
				if i == 3 {
					row["text"] = "  "
				}
				resp.Rows = append(resp.Rows, RowWrapper{RowIdx: i, Row: row})
			}
			json.NewEncoder(w).Encode(resp)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server, func() []int {
		mu.Lock()
		defer mu.Unlock()
		return append([]int(nil), offsets...)
	}
}

func TestFetchTexts_Paginates(t *testing.T) {
	server, offsets := newDatasetServer(t, 230)

	texts, err := NewClient(server.URL).FetchTexts(context.Background(), DatasetQuery{Dataset: "d", Column: "text"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(texts) != 229 {
		t.Errorf("expected 229 texts (one blank row skipped), got %d", len(texts))
	}
	if texts[0] != "row 0" || texts[len(texts)-1] != "row 229" {
		t.Errorf("unexpected first/last text: %q / %q", texts[0], texts[len(texts)-1])
	}
	if pages := offsets(); len(pages) != 3 {
		t.Errorf("expected 3 pages, got offsets %v", pages)
	}
}

func TestFetchTexts_MaxRows(t *testing.T) {
	server, _ := newDatasetServer(t, 500)

	texts, err := NewClient(server.URL).FetchTexts(context.Background(), DatasetQuery{
		Dataset: "d", Config: "default", Split: "train", Column: "text", MaxRows: 150,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(texts) != 149 {
		t.Errorf("expected 149 texts, got %d", len(texts))
	}
}

func TestFetchTexts_RequiresColumn(t *testing.T) {
	if _, err := NewClient("http://unused").FetchTexts(context.Background(), DatasetQuery{Dataset: "d"}); err == nil {
		t.Error("expected an error without a column")
	}
}

func TestGetRows_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "dataset is gated", http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := NewClient(server.URL).GetRows(context.Background(), "d", "c", "s", 0, 10)
	if err == nil {
		t.Fatal("expected an error")
	}
}
