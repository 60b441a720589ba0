package list

import (
	"github.com/spf13/cobra"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reference data used by rdsinfo",
		Long: `List reference data used by rdsinfo.
Currently supports listing:
  - Pricing catalog locations and the regions they map to
  - Available AWS credential profiles (used for S3 output)`,
	}

	cmd.AddCommand(NewRegionsCmd())
	cmd.AddCommand(NewProfilesCmd())

	return cmd
}
