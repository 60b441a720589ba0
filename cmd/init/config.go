package init

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"rdsinfo/internal/config"
)

// writeNewFile writes content to path, refusing to replace an existing file
// unless force is set.
func writeNewFile(cmd *cobra.Command, path string, force bool, write func(string) error) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	if _, err := os.Stat(absPath); err == nil && !force {
		return fmt.Errorf("file %s already exists. Use --force to overwrite", absPath)
	}

	dir := filepath.Dir(absPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := write(absPath); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created file: %s\n", absPath)
	return nil
}

// NewConfigCmd creates the config subcommand
func NewConfigCmd() *cobra.Command {
	var force bool
	var output string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create a default config.yaml file",
		Long: `Create a default config.yaml file with every setting and its default.

The file will be created in the current directory by default.
You can specify a different location using the --output flag.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = "config.yaml"
			}
			return writeNewFile(cmd, output, force, func(path string) error {
				if err := os.WriteFile(path, []byte(config.DefaultConfigYAML), 0644); err != nil {
					return fmt.Errorf("failed to write config file: %w", err)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (default: ./config.yaml)")

	return cmd
}
