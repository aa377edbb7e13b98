package app

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/relsync/relsync/internal/bcd"
	"github.com/relsync/relsync/internal/kinto"
	"github.com/relsync/relsync/internal/output"
	"github.com/relsync/relsync/internal/reconcile"
	"github.com/relsync/relsync/internal/report"
	"github.com/relsync/relsync/pkg/logging"
)

// NewSyncCommand creates the sync command, the single reconciliation
// run this tool exists for.
func (a *App) NewSyncCommand() *cobra.Command {
	var (
		dryRun      bool
		server      string
		environment string
		sourceURL   string
		bucket      string
		collection  string
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile browser releases into the record store",
		Long: `Fetches the compat dataset, lists the collection's current
records, applies the minimal create/update/delete set, and requests a
collection status transition when anything changed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.config
			if server != "" {
				cfg.Server = server
			}
			if environment != "" {
				cfg.Environment = environment
			}
			if sourceURL != "" {
				cfg.SourceURL = sourceURL
			}
			if bucket != "" {
				cfg.Bucket = bucket
			}
			if collection != "" {
				cfg.Collection = collection
			}
			if dryRun {
				cfg.DryRun = true
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			store := kinto.New(cfg.Server, cfg.Bucket, cfg.Collection, cfg.Authorization,
				kinto.WithDryRun(cfg.DryRun))

			runner := &reconcile.Runner{
				Source:      bcd.NewClient(cfg.SourceURL),
				Store:       store,
				AutoApprove: cfg.AutoApprove(),
			}

			if cfg.DryRun {
				logging.Info().Msg("Dry run: no remote mutation will be performed")
			}

			result, err := runner.Run(cmd.Context())
			if err != nil {
				return err
			}

			return report.Write(os.Stdout, result, output.DetectFormat(cfg.Format))
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "compute and report the diff without remote mutation")
	cmd.Flags().StringVar(&server, "server", "", "record store API root URL (env SERVER)")
	cmd.Flags().StringVar(&environment, "environment", "", "deployment environment: dev, stage, prod (env ENVIRONMENT)")
	cmd.Flags().StringVar(&sourceURL, "source-url", "", "compat dataset URL (env SOURCE_URL)")
	cmd.Flags().StringVar(&bucket, "bucket", "", "record store bucket (env BUCKET)")
	cmd.Flags().StringVar(&collection, "collection", "", "record store collection (env COLLECTION)")

	return cmd
}
