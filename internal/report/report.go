// Package report renders the grouped run summary: operation counts,
// tabular detail per bucket, and the full post-sync record listing
// when anything changed.
package report

import (
	"fmt"
	"io"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/relsync/relsync/internal/bcd"
	"github.com/relsync/relsync/internal/kinto"
	"github.com/relsync/relsync/internal/output"
	"github.com/relsync/relsync/internal/reconcile"
)

var titler = cases.Title(language.English)

// Write renders the result in the requested format. JSON and YAML get
// the raw result; the table format gets the grouped summary.
func Write(w io.Writer, result *reconcile.Result, format output.Format) error {
	if format != output.FormatTable {
		return output.NewFormatter(format).Format(w, result)
	}
	return writeTables(w, result)
}

func writeTables(w io.Writer, result *reconcile.Result) error {
	changeset := result.Changeset

	fmt.Fprintf(w, "Sync summary: %d added, %d updated, %d removed\n",
		len(changeset.Added), len(changeset.Updated), len(changeset.Removed))

	if !changeset.HasChanges() {
		fmt.Fprintln(w, "Store is in sync; no operations applied.")
		return nil
	}

	formatter := output.NewFormatter(output.FormatTable)

	if err := writeReleases(w, formatter, "added", changeset.Added); err != nil {
		return err
	}
	if err := writeReleases(w, formatter, "updated", changeset.Updated); err != nil {
		return err
	}
	if len(changeset.Removed) > 0 {
		fmt.Fprintf(w, "\n%s (%d)\n", titler.String("removed"), len(changeset.Removed))
		if err := formatter.Format(w, recordsData(changeset.Removed)); err != nil {
			return err
		}
	}

	if len(result.Records) > 0 {
		fmt.Fprintf(w, "\nRecords after sync (%d)\n", len(result.Records))
		if err := formatter.Format(w, recordsData(result.Records)); err != nil {
			return err
		}
	}

	if result.Transition != "" {
		fmt.Fprintf(w, "\nRequested collection status: %s\n", result.Transition)
	}
	return nil
}

func writeReleases(w io.Writer, formatter output.Formatter, bucket string, releases []bcd.Release) error {
	if len(releases) == 0 {
		return nil
	}
	fmt.Fprintf(w, "\n%s (%d)\n", titler.String(bucket), len(releases))
	return formatter.Format(w, releasesData(releases))
}

func releasesData(releases []bcd.Release) output.Data {
	rows := make([][]string, 0, len(releases))
	for _, release := range releases {
		rows = append(rows, []string{release.BrowserID, release.Version, release.Name, release.Status})
	}
	return output.Data{
		Headers: []string{"Browser", "Version", "Name", "Status"},
		Rows:    rows,
	}
}

func recordsData(records []kinto.Record) output.Data {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{record.ID, record.BrowserID, record.Version, record.Name, record.Status})
	}
	return output.Data{
		Headers: []string{"ID", "Browser", "Version", "Name", "Status"},
		Rows:    rows,
	}
}
