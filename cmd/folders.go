package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"framekeep/pkg/episode"
	"framekeep/pkg/folder"
)

func buildFoldersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "folders",
		Short: "List candidate frame folders under the library root",
		Long: `Lists every non-hidden folder under the library root with its parsed
title, season/episode markers, and image count, newest first.

Examples:
  framekeep folders
  framekeep folders --root /srv/frames`,
		Args: cobra.NoArgs,
		RunE: runFolders,
	}
}

func runFolders(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	entries, err := folder.List(cfg.Root)
	if err != nil {
		return fmt.Errorf("list folders: %w", err)
	}

	if len(entries) == 0 {
		fmt.Printf("No folders under %s\n", cfg.Root)
		return nil
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Folder", "Title", "Section", "Images"})

	for _, entry := range entries {
		tw.AppendRow(table.Row{
			entry.Name,
			entry.Title,
			episode.SectionTitle(entry.Season, entry.Episode),
			entry.ImageCount,
		})
	}

	tw.Render()

	return nil
}
