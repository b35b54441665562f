package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

//go:embed templates/sitescout.yaml
var configTemplate embed.FS

// configFileName is the default configuration file name.
const configFileName = ".sitescout"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new sitescout configuration file",
		Long: `Initialize creates a new .sitescout configuration file in the current directory.

The generated file includes:
- Default settings for timeouts, page ceilings, and checkpoints
- A commented example site definition
- Documentation for all available options

Examples:
  # Create .sitescout in current directory
  sitescout init

  # Create config file at a specific path
  sitescout init -o myconfig.yaml

  # Force overwrite existing file
  sitescout init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", configFileName,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if err := writeConfigTemplate(outputPath, force); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(cmd.OutOrStdout(), "\nEdit this file to define your sites:")
	fmt.Fprintln(cmd.OutOrStdout(), "  - start_urls, host, and path_prefix bound the crawl")
	fmt.Fprintln(cmd.OutOrStdout(), "  - output_csv is the inventory the crawl writes")
	fmt.Fprintln(cmd.OutOrStdout(), "  - known_csv points at a prior inventory to skip")

	return nil
}

// writeConfigTemplate materializes the embedded template at path,
// creating parent directories and refusing to clobber an existing file
// unless force is set.
func writeConfigTemplate(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", path)
		}
	}

	content, err := configTemplate.ReadFile("templates/sitescout.yaml")
	if err != nil {
		return fmt.Errorf("read config template: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, content, 0600); err != nil {
		return fmt.Errorf("write configuration file: %w", err)
	}
	return nil
}
