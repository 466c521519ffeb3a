// Package huggingface talks to two Hugging Face services: the Dataset Viewer API, which
// supplies texts to embed, and the Inference API, which embeds them.
package huggingface

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// DatasetsBaseURL is the public Dataset Viewer endpoint.
const DatasetsBaseURL = "https://datasets-server.huggingface.co"

// maxRowsPerPage is the largest page the /rows endpoint serves.
const maxRowsPerPage = 100

// Client interacts with the Hugging Face Dataset Viewer API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Dataset Viewer client. An empty baseURL uses DatasetsBaseURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DatasetsBaseURL
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: &http.Client{}}
}

// SplitsResponse represents the response from the /splits endpoint.
type SplitsResponse struct {
	Splits []Split `json:"splits"`
}

// Split represents a dataset split.
type Split struct {
	Dataset string `json:"dataset"`
	Config  string `json:"config"`
	Split   string `json:"split"`
}

// RowsResponse represents the response from the /rows endpoint.
type RowsResponse struct {
	Rows []RowWrapper `json:"rows"`
}

// RowWrapper wraps an individual row from the dataset.
type RowWrapper struct {
	RowIdx int            `json:"row_idx"`
	Row    map[string]any `json:"row"`
}

// DatasetQuery selects a text column from one split of a dataset.
type DatasetQuery struct {
	Dataset string
	Config  string // empty selects the first available config
	Split   string // empty selects the first available split
	Column  string
	MaxRows int // 0 means every row
}

// GetSplits fetches available splits for a dataset.
func (c *Client) GetSplits(ctx context.Context, dataset string) (*SplitsResponse, error) {
	reqURL := fmt.Sprintf("%s/splits?dataset=%s", c.baseURL, url.QueryEscape(dataset))

	var result SplitsResponse
	if err := c.getJSON(ctx, reqURL, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetRows fetches rows from a dataset split.
func (c *Client) GetRows(ctx context.Context, dataset, config, split string, offset, length int) (*RowsResponse, error) {
	reqURL := fmt.Sprintf("%s/rows?dataset=%s&config=%s&split=%s&offset=%s&length=%s",
		c.baseURL,
		url.QueryEscape(dataset),
		url.QueryEscape(config),
		url.QueryEscape(split),
		strconv.Itoa(offset),
		strconv.Itoa(length),
	)

	var result RowsResponse
	if err := c.getJSON(ctx, reqURL, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// FetchTexts returns the non-empty string values of query.Column, paginating through the
// split in pages of 100 rows. Missing config or split names are resolved with GetSplits.
func (c *Client) FetchTexts(ctx context.Context, query DatasetQuery) ([]string, error) {
	if query.Dataset == "" || query.Column == "" {
		return nil, fmt.Errorf("dataset and column are required")
	}

	if query.Config == "" || query.Split == "" {
		splits, err := c.GetSplits(ctx, query.Dataset)
		if err != nil {
			return nil, err
		}
		if len(splits.Splits) == 0 {
			return nil, fmt.Errorf("dataset %q has no splits", query.Dataset)
		}
		if query.Config == "" {
			query.Config = splits.Splits[0].Config
		}
		if query.Split == "" {
			query.Split = splits.Splits[0].Split
		}
	}

	var texts []string
	offset := 0

	for {
		if query.MaxRows > 0 && offset >= query.MaxRows {
			break
		}

		remaining := maxRowsPerPage
		if query.MaxRows > 0 && offset+maxRowsPerPage > query.MaxRows {
			remaining = query.MaxRows - offset
		}

		rows, err := c.GetRows(ctx, query.Dataset, query.Config, query.Split, offset, remaining)
		if err != nil {
			return nil, err
		}

		if len(rows.Rows) == 0 {
			break
		}

		for _, wrapper := range rows.Rows {
			if text, ok := wrapper.Row[query.Column].(string); ok && strings.TrimSpace(text) != "" {
				texts = append(texts, text)
			}
		}

		offset += len(rows.Rows)

		if len(rows.Rows) < remaining {
			break
		}
	}

	return texts, nil
}

func (c *Client) getJSON(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("API error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
