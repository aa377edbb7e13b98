// Package kinto is a thin client for the record store's collection
// API: list, create, update and delete records, plus the two
// collection status transitions that drive the review workflow.
package kinto

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/relsync/relsync/internal/bcd"
	"github.com/relsync/relsync/pkg/errors"
	"github.com/relsync/relsync/pkg/logging"
)

// Collection status values understood by the record store.
const (
	StatusToReview = "to-review"
	StatusToSign   = "to-sign"
)

// DefaultHTTPTimeout bounds each store request.
const DefaultHTTPTimeout = 30 * time.Second

// Record is a stored browser release. ID is assigned by the store and
// only addresses update and delete calls.
type Record struct {
	ID           string `json:"id,omitempty"`
	BrowserID    string `json:"browserid"`
	Name         string `json:"name"`
	Status       string `json:"status"`
	Version      string `json:"version"`
	LastModified int64  `json:"last_modified,omitempty"`
}

// envelope is the store's {"data": ...} wrapper on payloads.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// Client talks to one collection of the record store.
type Client struct {
	http       *http.Client
	baseURL    string
	bucket     string
	collection string
	auth       Authenticator
	dryRun     bool
}

// Option configures a Client.
type Option func(*Client)

// WithDryRun disables every mutating call; each reports success and
// logs what it would have done.
func WithDryRun(enabled bool) Option {
	return func(c *Client) { c.dryRun = enabled }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New creates a client for the collection under baseURL. The
// credential follows the bearer-passthrough / basic-encode rule of
// NewAuthenticator.
func New(baseURL, bucket, collection, credential string, opts ...Option) *Client {
	c := &Client{
		http:       &http.Client{Timeout: DefaultHTTPTimeout},
		baseURL:    baseURL,
		bucket:     bucket,
		collection: collection,
		auth:       NewAuthenticator(credential),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DryRun reports whether mutating calls are disabled.
func (c *Client) DryRun() bool {
	return c.dryRun
}

func (c *Client) collectionURL() string {
	return fmt.Sprintf("%s/buckets/%s/collections/%s", c.baseURL, c.bucket, c.collection)
}

func (c *Client) recordsURL() string {
	return c.collectionURL() + "/records"
}

func (c *Client) recordURL(id string) string {
	return c.recordsURL() + "/" + id
}

// Records lists every record in the collection. A non-200 response is
// fatal to the run and carries the HTTP status and status text.
func (c *Client) Records(ctx context.Context) ([]Record, error) {
	resp, err := c.do(ctx, http.MethodGet, c.recordsURL(), nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewAPIError(c.recordsURL(), resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WrapResource("read", "records", c.recordsURL(), err)
	}

	var listing struct {
		Data []Record `json:"data"`
	}
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, errors.WrapParse("json", c.recordsURL(), err)
	}
	return listing.Data, nil
}

// Create posts a new record for the release. Success is a 201; any
// other outcome logs a warning and returns false.
func (c *Client) Create(ctx context.Context, release bcd.Release) bool {
	if c.dryRun {
		logging.Info().
			Bool("dry_run", true).
			Str("browser", release.BrowserID).
			Str("version", release.Version).
			Msg("Would create record")
		return true
	}

	payload, err := wrap(release)
	if err != nil {
		logging.Warn().Err(err).
			Str("browser", release.BrowserID).
			Str("version", release.Version).
			Msg("Failed to encode record")
		return false
	}

	resp, err := c.do(ctx, http.MethodPost, c.recordsURL(), payload)
	if err != nil {
		logging.Warn().Err(err).
			Str("browser", release.BrowserID).
			Str("version", release.Version).
			Msg("Failed to create record")
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		logging.Warn().
			Int("status", resp.StatusCode).
			Str("status_text", resp.Status).
			Str("browser", release.BrowserID).
			Str("version", release.Version).
			Msg("Failed to create record")
		return false
	}
	return true
}

// Update rewrites the record addressed by its store-assigned ID with
// the release's fields. The caller guarantees the key fields match.
func (c *Client) Update(ctx context.Context, record Record, release bcd.Release) bool {
	if c.dryRun {
		logging.Info().
			Bool("dry_run", true).
			Str("id", record.ID).
			Str("browser", release.BrowserID).
			Str("version", release.Version).
			Msg("Would update record")
		return true
	}

	payload, err := wrap(release)
	if err != nil {
		logging.Warn().Err(err).Str("id", record.ID).Msg("Failed to encode record")
		return false
	}

	resp, err := c.do(ctx, http.MethodPut, c.recordURL(record.ID), payload)
	if err != nil {
		logging.Warn().Err(err).Str("id", record.ID).Msg("Failed to update record")
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		logging.Warn().
			Int("status", resp.StatusCode).
			Str("status_text", resp.Status).
			Str("id", record.ID).
			Msg("Failed to update record")
		return false
	}
	return true
}

// Delete removes the record addressed by its store-assigned ID.
func (c *Client) Delete(ctx context.Context, record Record) bool {
	if c.dryRun {
		logging.Info().
			Bool("dry_run", true).
			Str("id", record.ID).
			Str("browser", record.BrowserID).
			Str("version", record.Version).
			Msg("Would delete record")
		return true
	}

	resp, err := c.do(ctx, http.MethodDelete, c.recordURL(record.ID), nil)
	if err != nil {
		logging.Warn().Err(err).Str("id", record.ID).Msg("Failed to delete record")
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		logging.Warn().
			Int("status", resp.StatusCode).
			Str("status_text", resp.Status).
			Str("id", record.ID).
			Msg("Failed to delete record")
		return false
	}
	return true
}

// RequestReview asks the store to move the collection into review.
// Best-effort: failures log a warning and are not propagated.
func (c *Client) RequestReview(ctx context.Context) {
	c.patchStatus(ctx, StatusToReview)
}

// Approve signs off pending changes without review. Used in the dev
// environment where no reviewer exists.
func (c *Client) Approve(ctx context.Context) {
	c.patchStatus(ctx, StatusToSign)
}

func (c *Client) patchStatus(ctx context.Context, status string) {
	if c.dryRun {
		logging.Info().
			Bool("dry_run", true).
			Str("collection_status", status).
			Msg("Would update collection status")
		return
	}

	payload, err := wrap(map[string]string{"status": status})
	if err != nil {
		logging.Warn().Err(err).Msg("Failed to encode collection status")
		return
	}

	resp, err := c.do(ctx, http.MethodPatch, c.collectionURL(), payload)
	if err != nil {
		logging.Warn().Err(err).
			Str("collection_status", status).
			Msg("Failed to update collection status")
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		logging.Warn().
			Int("status", resp.StatusCode).
			Str("status_text", resp.Status).
			Str("collection_status", status).
			Msg("Failed to update collection status")
		return
	}

	logging.Info().Str("collection_status", status).Msg("Collection status updated")
}

// do issues one authenticated request.
func (c *Client) do(ctx context.Context, method, url string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, errors.WrapResource("create", "request", method+" "+url, err)
	}

	c.auth.Apply(req)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &errors.APIError{Endpoint: url, Status: "request failed", Err: err}
	}
	return resp, nil
}

// wrap encodes a payload inside the store's {"data": ...} envelope.
func wrap(data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Data: raw})
}
