package list

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"rdsinfo/internal/aws"
)

// NewProfilesCmd creates and returns the profiles command
func NewProfilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List available AWS profiles",
		Long: `List all available AWS credential profiles from the system.
These profiles are read from the AWS credentials and config files.`,
		Example: `  # List all available AWS profiles
  rdsinfo list profiles`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfiles(cmd.OutOrStdout())
		},
	}

	return cmd
}

func runProfiles(out io.Writer) error {
	profiles, err := aws.ListProfiles()
	if err != nil {
		return fmt.Errorf("failed to list profiles: %w", err)
	}

	if len(profiles) == 0 {
		fmt.Fprintln(out, "No profiles found")
		return nil
	}

	for _, profile := range profiles {
		fmt.Fprintln(out, profile)
	}

	return nil
}
