package scrape

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	pricingconfig "rdsinfo/internal/aws/pricing/config"
	"rdsinfo/internal/aws/pricing/normalize"
	"rdsinfo/internal/config"
	"rdsinfo/internal/output"
	"rdsinfo/internal/pipeline"
	"rdsinfo/internal/source"
)

// NewScrapeCmd creates the scrape command
func NewScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape [catalog.json]",
		Short: "Build the RDS instance type pricing file",
		Long: `Build the normalized RDS instance type pricing file.

The pricing catalog is read from the given file, or downloaded from
sources.catalog_url when no file is given. EBS capacity limits are read
from sources.capacity_url. Records are written to output.path, or to
S3 when output.type is s3.`,
		Example: `  # Download everything and write ./www/rds/instances.json
  rdsinfo scrape

  # Use a previously downloaded catalog
  rdsinfo scrape ./index.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd.Context(), cmd.OutOrStdout(), args)
		},
	}

	return cmd
}

// Run executes a scrape with the loaded configuration. args optionally holds
// a local catalog path.
func Run(ctx context.Context, out io.Writer, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	client := source.NewClient(cfg.Timeout)
	progress := source.WithProgress(os.Stderr)

	catalogSource := source.FromLocation(client, cfg.CatalogURL, progress)
	if len(args) > 0 {
		catalogSource = source.File(args[0])
	}

	writer := output.NewWriter(output.Config{
		Type:     output.Type(cfg.OutputType),
		Path:     cfg.OutputPath,
		S3Bucket: cfg.Bucket,
		S3Region: cfg.BucketRegion,
		S3Key:    cfg.Key,
		Profile:  cfg.Profile,
		Progress: os.Stderr,
	})

	result, err := pipeline.Run(ctx, pipeline.Options{
		Catalog:  catalogSource,
		Capacity: source.FromLocation(client, cfg.CapacityURL, progress),
		Regions:  pricingconfig.NewLocations(),
		Writer:   writer,
		EngineOptions: []normalize.Option{
			normalize.WithDefaultRegion(cfg.DefaultRegion),
			normalize.WithOneYearAllUpfront(cfg.AmortizeOneYearAllUpfront),
		},
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s %d instance types to %s\n",
		color.GreenString("Wrote"), len(result.Records), writer.Destination())

	skipped := result.Pricing.UnknownLocation + result.Pricing.MissingEngineCode +
		result.Pricing.InvalidPrice + result.Pricing.UnknownTerm + result.Pricing.AmortizationFailures
	if skipped > 0 {
		fmt.Fprintf(out, "%s %d catalog entries skipped (run with --log-level DEBUG for details)\n",
			color.YellowString("Note:"), skipped)
	}
	if n := len(result.Capacity.NonDefaultUnmatched); n > 0 {
		fmt.Fprintf(out, "%s %d capacity rows matched no instance type\n",
			color.YellowString("Note:"), n)
	}
	return nil
}
