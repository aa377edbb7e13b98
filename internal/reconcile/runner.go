package reconcile

import (
	"context"

	"github.com/relsync/relsync/internal/bcd"
	"github.com/relsync/relsync/internal/kinto"
	"github.com/relsync/relsync/pkg/errors"
	"github.com/relsync/relsync/pkg/logging"
)

// Source supplies the flattened release list; *bcd.Client satisfies it.
type Source interface {
	Releases(ctx context.Context) ([]bcd.Release, error)
}

// Runner is the run-to-completion driver: fetch, reconcile, report,
// then request one collection transition when anything changed.
type Runner struct {
	Source Source
	Store  Store

	// AutoApprove signs changes off directly instead of requesting
	// review. Only the dev environment sets it.
	AutoApprove bool
}

// Result is what one run produced, for reporting.
type Result struct {
	Changeset *Changeset `json:"changeset"`

	// Records is the post-sync record listing, re-fetched only when
	// the changeset is non-empty.
	Records []kinto.Record `json:"records,omitempty"`

	// Transition is the collection status requested, empty when no
	// change was detected.
	Transition string `json:"transition,omitempty"`
}

// Run executes one reconciliation. The dataset fetch and the initial
// record listing are fatal; everything after is best-effort.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	releases, err := r.Source.Releases(ctx)
	if err != nil {
		return nil, errors.WrapResource("fetch", "dataset", "", err)
	}
	logging.Debug().Int("releases", len(releases)).Msg("Dataset flattened")

	records, err := r.Store.Records(ctx)
	if err != nil {
		return nil, errors.WrapResource("list", "records", "", err)
	}
	logging.Debug().Int("records", len(records)).Msg("Current records fetched")

	changeset := Reconcile(ctx, r.Store, records, releases)

	result := &Result{Changeset: changeset}
	if !changeset.HasChanges() {
		logging.Info().Msg("No changes detected")
		return result, nil
	}

	logging.Info().
		Int("added", len(changeset.Added)).
		Int("updated", len(changeset.Updated)).
		Int("removed", len(changeset.Removed)).
		Msg("Changes detected")

	// Re-fetch so the report shows the store as it now stands. A
	// failure here degrades the report, not the sync.
	if refreshed, err := r.Store.Records(ctx); err != nil {
		logging.Warn().Err(err).Msg("Failed to re-fetch records for report")
	} else {
		result.Records = refreshed
	}

	// Fire-and-forget: the store owns the workflow from here.
	if r.AutoApprove {
		r.Store.Approve(ctx)
		result.Transition = kinto.StatusToSign
	} else {
		r.Store.RequestReview(ctx)
		result.Transition = kinto.StatusToReview
	}

	return result, nil
}
