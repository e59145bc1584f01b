package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/retina/internal/config"
)

// configCmd prints the effective configuration after merging files,
// environment variables and flags.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the effective configuration as YAML after merging configuration
files, environment variables (RETINA_*) and command-line flags.

Examples:
  retina config
  retina config --paths`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		showPaths, _ := cmd.Flags().GetBool("paths")
		if showPaths {
			for _, p := range config.GetConfigSearchPaths() {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		}

		cfg := GetConfig()
		out, err := cfg.YAML()
		if err != nil {
			return fmt.Errorf("failed to render configuration: %w", err)
		}

		if used := GetConfigLoader().GetConfigFileUsed(); used != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "# loaded from %s\n", used)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().Bool("paths", false, "print config file search paths and exit")
}
