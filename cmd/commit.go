package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func buildCommitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "commit [folder]",
		Short: "Apply all decisions for a folder as one crash-safe operation",
		Long: `Applies every recorded decision for the folder: deletes rejected
frames, then renumbers the kept frames into the configured naming scheme.
Renames either fully apply or fully roll back; deletions are irreversible.

On success the folder's decisions are cleared and the resume anchor
advances.

Examples:
  framekeep commit "Show S01 (2020)"
  framekeep commit -v "Show S01 (2020)"`,
		Args: cobra.ExactArgs(1),
		RunE: runCommit,
	}
}

func runCommit(_ *cobra.Command, args []string) error {
	folderName := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	decisions, err := db.Decisions(ctx, folderName)
	if err != nil {
		return err
	}

	var onProgress func(stage string, processed, total int)
	if verbose {
		onProgress = func(stage string, processed, total int) {
			fmt.Fprintf(os.Stderr, "%s: %d/%d\n", stage, processed, total)
		}
	}

	engine := newEngine(cfg, newLogger(), storeRecords{store: db}, onProgress)

	outcome, err := engine.Commit(ctx, folderName, decisions)

	fmt.Println("=== Summary ===")
	fmt.Printf("Deleted:  %d\n", outcome.DeletedCount)
	fmt.Printf("Kept:     %d\n", outcome.KeptCount)
	for _, delErr := range outcome.DeleteErrors {
		fmt.Printf("WARN: %v\n", delErr)
	}
	for _, renErr := range outcome.RenameErrors {
		fmt.Printf("ERROR: %v\n", renErr)
	}

	if err != nil {
		return err
	}

	fmt.Println("Commit complete.")

	return nil
}
