package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	initCmd "rdsinfo/cmd/init"
	"rdsinfo/cmd/list"
	"rdsinfo/cmd/scrape"
	"rdsinfo/cmd/version"
	"rdsinfo/internal/config"
	"rdsinfo/internal/logging"
)

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:   "rdsinfo [catalog.json]",
		Short: "rdsinfo - RDS instance type pricing normalizer",
		Long: `rdsinfo turns the AWS RDS pricing catalog into one record per instance type,
with on-demand and amortized reserved prices by region and database engine,
merged with the EBS capacity limits of each instance type.

Without a subcommand it behaves like "rdsinfo scrape".`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.InitConfig(configFile); err != nil {
				return err
			}

			root := cmd.Root().PersistentFlags()
			if err := viper.BindPFlag(config.KeyLogLevel, root.Lookup("log-level")); err != nil {
				return err
			}
			if err := viper.BindPFlag(config.KeyLogFormat, root.Lookup("log-format")); err != nil {
				return err
			}

			logging.Configure(logging.LogConfig{
				Level:  logging.ParseLevel(viper.GetString(config.KeyLogLevel)),
				Format: logging.ParseFormat(viper.GetString(config.KeyLogFormat)),
			})
			config.LogConfigurationSources(cmd)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return scrape.Run(cmd.Context(), cmd.OutOrStdout(), args)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to config file")
	rootCmd.PersistentFlags().String("log-level", "INFO", "Set logging level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log output format (text or json)")

	rootCmd.AddCommand(scrape.NewScrapeCmd())
	rootCmd.AddCommand(list.NewListCmd())
	rootCmd.AddCommand(initCmd.NewInitCmd())
	rootCmd.AddCommand(version.NewVersionCmd())

	return rootCmd
}

// Execute adds all child commands to the root command and runs it
func Execute() error {
	return NewRootCmd().Execute()
}
