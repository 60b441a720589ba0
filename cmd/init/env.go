package init

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"rdsinfo/internal/config"
)

// defaultEnv lists the overrides most often set per environment
func defaultEnv() map[string]string {
	return map[string]string{
		"RDSINFO_APP_LOG_LEVEL":          "INFO",
		"RDSINFO_OUTPUT_TYPE":            config.DefaultOutputType,
		"RDSINFO_OUTPUT_PATH":            config.DefaultOutputPath,
		"RDSINFO_OUTPUT_BUCKET":          "",
		"RDSINFO_OUTPUT_BUCKET_REGION":   "",
		"RDSINFO_AWS_PROFILE":            "",
		"RDSINFO_PRICING_DEFAULT_REGION": config.DefaultRegion,
		"RDSINFO_SOURCES_TIMEOUT":        config.DefaultTimeout.String(),
	}
}

// NewEnvCmd creates the env subcommand
func NewEnvCmd() *cobra.Command {
	var force bool
	var output string

	cmd := &cobra.Command{
		Use:   "env",
		Short: "Create a default .env file",
		Long: `Create a .env file with RDSINFO_ environment overrides.

The file is loaded automatically from the working directory. Values set
in the real environment take precedence over the file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = ".env"
			}
			return writeNewFile(cmd, output, force, func(path string) error {
				if err := godotenv.Write(defaultEnv(), path); err != nil {
					return fmt.Errorf("failed to write env file: %w", err)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (default: ./.env)")

	return cmd
}
