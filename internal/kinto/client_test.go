package kinto

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relsync/relsync/internal/bcd"
	"github.com/relsync/relsync/pkg/errors"
)

const (
	testBucket     = "main-workspace"
	testCollection = "browser-compat-releases"
)

func testClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(server.URL, testBucket, testCollection, "Bearer token", opts...)
}

func TestRecords(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/buckets/main-workspace/collections/browser-compat-releases/records", r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))

		_, _ = w.Write([]byte(`{"data": [
			{"id": "r1", "browserid": "chrome", "name": "Chrome", "status": "current", "version": "90"},
			{"id": "r2", "browserid": "firefox", "name": "Firefox", "status": "esr", "version": "91"}
		]}`))
	})

	records, err := client.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "r1", records[0].ID)
	assert.Equal(t, "chrome", records[0].BrowserID)
	assert.Equal(t, "91", records[1].Version)
}

func TestRecordsErrorCarriesStatus(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "denied", http.StatusForbidden)
	})

	_, err := client.Records(context.Background())
	require.Error(t, err)

	var apiErr *errors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Contains(t, apiErr.Status, "403")
}

func TestCreate(t *testing.T) {
	release := bcd.Release{BrowserID: "chrome", Name: "Chrome", Status: "current", Version: "90"}

	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		var payload struct {
			Data bcd.Release `json:"data"`
		}
		require.NoError(t, json.Unmarshal(body, &payload))
		assert.Equal(t, release, payload.Data)

		w.WriteHeader(http.StatusCreated)
	})

	assert.True(t, client.Create(context.Background(), release))
}

func TestCreateFailureReturnsFalse(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad record", http.StatusBadRequest)
	})

	ok := client.Create(context.Background(), bcd.Release{BrowserID: "chrome", Version: "90"})
	assert.False(t, ok)
}

func TestUpdateAddressesRecordByID(t *testing.T) {
	record := Record{ID: "r7", BrowserID: "edge", Name: "Edg", Status: "current", Version: "18"}
	release := bcd.Release{BrowserID: "edge", Name: "Edge", Status: "current", Version: "18"}

	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/buckets/main-workspace/collections/browser-compat-releases/records/r7", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})

	assert.True(t, client.Update(context.Background(), record, release))
}

func TestDelete(t *testing.T) {
	record := Record{ID: "r5", BrowserID: "firefox", Version: "60"}

	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/buckets/main-workspace/collections/browser-compat-releases/records/r5", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})

	assert.True(t, client.Delete(context.Background(), record))
}

func TestDeleteFailureReturnsFalse(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "conflict", http.StatusConflict)
	})

	assert.False(t, client.Delete(context.Background(), Record{ID: "r5"}))
}

func TestStatusTransitions(t *testing.T) {
	var got []string

	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/buckets/main-workspace/collections/browser-compat-releases", r.URL.Path)

		body, _ := io.ReadAll(r.Body)
		var payload struct {
			Data map[string]string `json:"data"`
		}
		require.NoError(t, json.Unmarshal(body, &payload))
		got = append(got, payload.Data["status"])

		w.WriteHeader(http.StatusOK)
	})

	client.RequestReview(context.Background())
	client.Approve(context.Background())

	assert.Equal(t, []string{StatusToReview, StatusToSign}, got)
}

func TestDryRunSkipsMutations(t *testing.T) {
	var mutations int

	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			mutations++
		}
		_, _ = w.Write([]byte(`{"data": []}`))
	}, WithDryRun(true))

	require.True(t, client.DryRun())

	ctx := context.Background()
	assert.True(t, client.Create(ctx, bcd.Release{BrowserID: "chrome", Version: "90"}))
	assert.True(t, client.Update(ctx, Record{ID: "r1"}, bcd.Release{}))
	assert.True(t, client.Delete(ctx, Record{ID: "r1"}))
	client.RequestReview(ctx)
	client.Approve(ctx)

	// Listing still works in dry-run mode.
	_, err := client.Records(ctx)
	require.NoError(t, err)

	assert.Zero(t, mutations, "dry run must not issue mutating requests")
}
