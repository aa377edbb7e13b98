package bcd

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/relsync/relsync/pkg/errors"
)

// DefaultDatasetURL is the published browser-compat-data document.
const DefaultDatasetURL = "https://unpkg.com/@mdn/browser-compat-data/data.json"

// DefaultHTTPTimeout bounds the dataset download.
const DefaultHTTPTimeout = 30 * time.Second

// Client downloads the compat dataset over HTTP.
type Client struct {
	URL    string
	Client *http.Client
}

// NewClient creates a dataset client for the given URL. An empty URL
// selects the published dataset endpoint.
func NewClient(url string) *Client {
	if url == "" {
		url = DefaultDatasetURL
	}
	return &Client{
		URL:    url,
		Client: &http.Client{Timeout: DefaultHTTPTimeout},
	}
}

// datasetDocument is the full published document; the browser map
// lives under the "browsers" key alongside compat tables we ignore.
type datasetDocument struct {
	Browsers Dataset `json:"browsers"`
}

// Dataset fetches and decodes the browser map. A non-200 response or
// an undecodable body is fatal to the run.
func (c *Client) Dataset(ctx context.Context) (Dataset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, errors.WrapResource("create", "request", c.URL, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, &errors.APIError{
			Endpoint: c.URL,
			Status:   "failed to download dataset",
			Err:      err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewAPIError(c.URL, resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WrapResource("read", "dataset", c.URL, err)
	}

	// The published document nests browsers under a "browsers" key;
	// a bare browser map (as served by mirrors and fixtures) also decodes.
	var doc datasetDocument
	if err := json.Unmarshal(body, &doc); err == nil && len(doc.Browsers) > 0 {
		return doc.Browsers, nil
	}

	var browsers Dataset
	if err := json.Unmarshal(body, &browsers); err != nil {
		return nil, errors.WrapParse("json", c.URL, err)
	}
	return browsers, nil
}

// Releases fetches the dataset and flattens it into the validated
// release list.
func (c *Client) Releases(ctx context.Context) ([]Release, error) {
	browsers, err := c.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return Flatten(browsers), nil
}
