package main

import (
	"os"
)

func main() {
	rootCmd := buildRootCommand()
	rootCmd.AddCommand(buildFoldersCommand())
	rootCmd.AddCommand(buildDecideCommand())
	rootCmd.AddCommand(buildPreviewCommand())
	rootCmd.AddCommand(buildCommitCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
