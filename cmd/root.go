package main

import (
	"github.com/spf13/cobra"
)

var (
	rootDir    string
	configPath string
	verbose    bool
)

func buildRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "framekeep",
		Short: "Curate extracted video frames into a densely numbered library",
		Long: `framekeep applies keep/delete decisions to folders of extracted frames.

Commands:
  folders    List candidate frame folders under the library root
  decide     Record a keep/delete decision for a frame
  preview    Show what a commit would delete and rename
  commit     Apply all decisions for a folder as one crash-safe operation

Examples:
  # See what needs reviewing
  framekeep folders

  # Mark frames
  framekeep decide "Show S01 (2020)" frame01.jpg keep
  framekeep decide "Show S01 (2020)" frame02.jpg delete

  # Always preview before committing
  framekeep preview "Show S01 (2020)"
  framekeep commit "Show S01 (2020)"

Safety:
  A commit either fully applies or fully rolls back its renames; files
  already deleted stay deleted. The tool never touches files outside the
  folder being committed.`,
	}

	cmd.PersistentFlags().StringVar(&rootDir, "root", "", "Library root directory (overrides config)")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	return cmd
}
