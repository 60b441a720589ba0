package list

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	pricingconfig "rdsinfo/internal/aws/pricing/config"
)

// NewRegionsCmd creates and returns the regions command
func NewRegionsCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "regions",
		Short: "List catalog locations and their regions",
		Long: `List every pricing catalog location string that rdsinfo can map to a
region id. SKUs whose location is not listed are skipped with a warning.`,
		Example: `  # Show the location table
  rdsinfo list regions

  # As JSON
  rdsinfo list regions --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegions(cmd.OutOrStdout(), format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format (text or json)")

	return cmd
}

func runRegions(out io.Writer, format string) error {
	entries := pricingconfig.NewLocations().Entries()

	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case "text":
		for _, e := range entries {
			fmt.Fprintf(out, "%-16s %s\n", color.CyanString(e.Region), e.Location)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %q (must be text or json)", format)
	}
}
