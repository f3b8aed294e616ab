package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"framekeep/pkg/decision"
	"framekeep/pkg/folder"
)

func buildDecideCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "decide [folder] [file] [keep|delete|clear]",
		Short: "Record a keep/delete decision for a frame",
		Long: `Records a decision for one frame. Decisions accumulate until the folder
is committed; "clear" withdraws an earlier decision, leaving the frame to
default to keep at commit time.

Examples:
  framekeep decide "Show S01 (2020)" frame01.jpg keep
  framekeep decide "Show S01 (2020)" frame02.jpg delete
  framekeep decide "Show S01 (2020)" frame02.jpg clear`,
		Args: cobra.ExactArgs(3),
		RunE: runDecide,
	}
}

func runDecide(_ *cobra.Command, args []string) error {
	folderName, filename, verdict := args[0], args[1], args[2]

	if _, err := folder.ValidateName(folderName); err != nil {
		return err
	}

	if verdict == "clear" {
		verdict = "cleared"
	}
	d, err := decision.Parse(verdict)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.RecordDecision(context.Background(), folderName, filename, d); err != nil {
		return err
	}

	fmt.Printf("%s: %s -> %s\n", folderName, filename, d)

	return nil
}
