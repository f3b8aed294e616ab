package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func buildPreviewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "preview [folder]",
		Short: "Show what a commit would delete and rename",
		Long: `Computes the commit plan for a folder without changing anything:
which frames would be deleted, and the final name every kept frame would
receive. The plan uses the same numbering as the real commit.

Examples:
  framekeep preview "Show S01 (2020)"`,
		Args: cobra.ExactArgs(1),
		RunE: runPreview,
	}
}

func runPreview(_ *cobra.Command, args []string) error {
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

	engine := newEngine(cfg, newLogger(), nil, nil)
	plan, err := engine.Preview(ctx, folderName, decisions)
	if err != nil {
		return err
	}

	fmt.Printf("Folder: %s\n", plan.Folder)
	if plan.Year != 0 {
		fmt.Printf("Title:  %s (%d)\n", plan.Title, plan.Year)
	} else {
		fmt.Printf("Title:  %s\n", plan.Title)
	}
	fmt.Println()

	if len(plan.Deletes) > 0 {
		fmt.Printf("Deleting %d frame(s):\n", len(plan.Deletes))
		for _, name := range plan.Deletes {
			fmt.Printf("  %s\n", name)
		}
		fmt.Println()
	}

	if len(plan.Renames) == 0 {
		fmt.Println("Nothing to keep.")
		return nil
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Section", "Current", "Final", "Decision"})

	for _, r := range plan.Renames {
		verdict := "keep (default)"
		if r.Decided {
			verdict = "keep"
		}
		tw.AppendRow(table.Row{r.Section, r.Name, r.FinalName, verdict})
	}

	tw.Render()

	fmt.Println()
	fmt.Println("Run 'framekeep commit' to apply.")

	return nil
}
