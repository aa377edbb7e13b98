// Package reconcile computes and applies the minimal diff between the
// flattened compat dataset and the record store collection, then
// drives the collection's review workflow.
package reconcile

import (
	"context"
	"sort"

	"github.com/relsync/relsync/internal/bcd"
	"github.com/relsync/relsync/internal/kinto"
)

// Store is the record store surface the reconciler drives. Mutating
// calls return plain success so an individual failure never aborts
// the run; *kinto.Client satisfies it.
type Store interface {
	Records(ctx context.Context) ([]kinto.Record, error)
	Create(ctx context.Context, release bcd.Release) bool
	Update(ctx context.Context, record kinto.Record, release bcd.Release) bool
	Delete(ctx context.Context, record kinto.Record) bool
	RequestReview(ctx context.Context)
	Approve(ctx context.Context)
}

// Changeset holds the operations that succeeded during a run. Failed
// operations are logged by the store client and omitted; the next run
// converges them.
type Changeset struct {
	Added   []bcd.Release  `json:"added"`
	Updated []bcd.Release  `json:"updated"`
	Removed []kinto.Record `json:"removed"`
}

// HasChanges returns true if the changeset contains any changes.
func (c *Changeset) HasChanges() bool {
	return len(c.Added) > 0 || len(c.Updated) > 0 || len(c.Removed) > 0
}

// Total returns the number of applied operations.
func (c *Changeset) Total() int {
	return len(c.Added) + len(c.Updated) + len(c.Removed)
}

// key is the composite identity shared by releases and records.
type key struct {
	browserID string
	version   string
}

// Reconcile compares records against releases and applies each
// operation as it is decided, accumulating the successful ones.
//
// Pass 1 walks the releases: a retired release deletes its record, a
// release without a record is created, a record with a stale name or
// status is rewritten, anything else is already in sync. Pass 2 walks
// the records and deletes orphans whose key no longer appears among
// the live releases (browsers or versions dropped from the dataset
// entirely, not merely retired).
func Reconcile(ctx context.Context, store Store, records []kinto.Record, releases []bcd.Release) *Changeset {
	changeset := &Changeset{}

	// First record wins when the store holds duplicate keys.
	recordsByKey := make(map[key]kinto.Record, len(records))
	for _, record := range records {
		k := key{record.BrowserID, record.Version}
		if _, exists := recordsByKey[k]; !exists {
			recordsByKey[k] = record
		}
	}

	live := make(map[key]bool, len(releases))
	deleted := make(map[string]bool)

	for _, release := range releases {
		k := key{release.BrowserID, release.Version}
		record, exists := recordsByKey[k]

		if release.Retired() {
			if exists && store.Delete(ctx, record) {
				changeset.Removed = append(changeset.Removed, record)
				deleted[record.ID] = true
			}
			continue
		}
		live[k] = true

		switch {
		case !exists:
			if store.Create(ctx, release) {
				changeset.Added = append(changeset.Added, release)
			}
		case record.Name != release.Name || record.Status != release.Status:
			if store.Update(ctx, record, release) {
				changeset.Updated = append(changeset.Updated, release)
			}
		}
	}

	for _, record := range records {
		if deleted[record.ID] {
			continue
		}
		if live[key{record.BrowserID, record.Version}] {
			continue
		}
		if store.Delete(ctx, record) {
			changeset.Removed = append(changeset.Removed, record)
		}
	}

	sortChangeset(changeset)
	return changeset
}

// sortChangeset orders the buckets for stable reporting.
func sortChangeset(c *Changeset) {
	sort.Slice(c.Added, func(i, j int) bool {
		return less(c.Added[i].BrowserID, c.Added[i].Version, c.Added[j].BrowserID, c.Added[j].Version)
	})
	sort.Slice(c.Updated, func(i, j int) bool {
		return less(c.Updated[i].BrowserID, c.Updated[i].Version, c.Updated[j].BrowserID, c.Updated[j].Version)
	})
	sort.Slice(c.Removed, func(i, j int) bool {
		return less(c.Removed[i].BrowserID, c.Removed[i].Version, c.Removed[j].BrowserID, c.Removed[j].Version)
	})
}

func less(aBrowser, aVersion, bBrowser, bVersion string) bool {
	if aBrowser != bBrowser {
		return aBrowser < bBrowser
	}
	return aVersion < bVersion
}
