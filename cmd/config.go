package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"mp4-splitter/infrastructure/config"

	"github.com/spf13/cobra"
)

// DefaultOutput is the default output writer for config commands
var DefaultOutput OutputWriter = os.Stdout

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration entries",
	Long: `Read and change settings in the configuration file.

Keys use dotted names such as server.port or paths.output_directory.

Examples:
  mp4-splitter config list
  mp4-splitter config get ffmpeg.path
  mp4-splitter config set paths.output_directory /videos/segments`,
}

func init() {
	rootCmd.AddCommand(configCmd)

	// Add subcommands
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
}

// --- GET command ---

var configGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		return RunConfigGetWithDependencies(c, cfgFile, args[0], DefaultOutput)
	},
}

// RunConfigGetWithDependencies runs the get command with injected dependencies
func RunConfigGetWithDependencies(cfg *config.Config, configPath, key string, out OutputWriter) error {
	mgr := config.NewConfigManager(cfg, configPath)
	value, err := mgr.Get(key)
	if err != nil {
		return fmt.Errorf("%w (valid keys: %s)", err, strings.Join(config.Keys(), ", "))
	}
	fmt.Fprintln(out, value)
	return nil
}

// --- SET command ---

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Change one setting and save the file",
	Long: `Change one setting, validate the result and write the configuration file.

Examples:
  mp4-splitter config set server.port 9000
  mp4-splitter config set ffmpeg.probe_backend opencv
  mp4-splitter config set history.enabled false`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		return RunConfigSetWithDependencies(c, cfgFile, args[0], args[1], DefaultOutput)
	},
}

// RunConfigSetWithDependencies runs the set command with injected dependencies
func RunConfigSetWithDependencies(cfg *config.Config, configPath, key, value string, out OutputWriter) error {
	mgr := config.NewConfigManager(cfg, configPath)
	if err := mgr.Set(key, value); err != nil {
		return err
	}
	fmt.Fprintf(out, "Set %s = %s\n", key, value)
	return nil
}

// --- LIST command ---

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every setting",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		return RunConfigListWithDependencies(c, cfgFile, DefaultOutput)
	},
}

// RunConfigListWithDependencies runs the list command with injected dependencies
func RunConfigListWithDependencies(cfg *config.Config, configPath string, out OutputWriter) error {
	mgr := config.NewConfigManager(cfg, configPath)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tVALUE")
	for _, e := range mgr.List() {
		fmt.Fprintf(w, "%s\t%s\n", e.Key, e.Value)
	}
	return w.Flush()
}
