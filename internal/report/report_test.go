package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/relsync/relsync/internal/bcd"
	"github.com/relsync/relsync/internal/kinto"
	"github.com/relsync/relsync/internal/output"
	"github.com/relsync/relsync/internal/reconcile"
)

func sampleResult() *reconcile.Result {
	return &reconcile.Result{
		Changeset: &reconcile.Changeset{
			Added: []bcd.Release{
				{BrowserID: "chrome", Name: "Chrome", Status: "current", Version: "90"},
			},
			Removed: []kinto.Record{
				{ID: "5", BrowserID: "firefox", Name: "Firefox", Status: "current", Version: "60"},
			},
		},
		Records: []kinto.Record{
			{ID: "7", BrowserID: "chrome", Name: "Chrome", Status: "current", Version: "90"},
		},
		Transition: kinto.StatusToReview,
	}
}

func TestWriteTableSummary(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleResult(), output.FormatTable); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	got := buf.String()
	for _, want := range []string{
		"1 added, 0 updated, 1 removed",
		"Added (1)",
		"Removed (1)",
		"Records after sync (1)",
		"chrome",
		"firefox",
		"to-review",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("table output missing %q:\n%s", want, got)
		}
	}
}

func TestWriteTableNoChanges(t *testing.T) {
	var buf bytes.Buffer
	result := &reconcile.Result{Changeset: &reconcile.Changeset{}}

	if err := Write(&buf, result, output.FormatTable); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "0 added, 0 updated, 0 removed") {
		t.Errorf("missing zero counts:\n%s", got)
	}
	if !strings.Contains(got, "in sync") {
		t.Errorf("missing in-sync notice:\n%s", got)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleResult(), output.FormatJSON); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	var decoded reconcile.Result
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded.Changeset.Added) != 1 || decoded.Transition != kinto.StatusToReview {
		t.Errorf("unexpected decoded result: %+v", decoded)
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleResult(), output.FormatYAML); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if !strings.Contains(buf.String(), "transition: to-review") {
		t.Errorf("yaml output missing transition:\n%s", buf.String())
	}
}
