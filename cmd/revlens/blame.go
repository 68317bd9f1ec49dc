package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"revlens/internal/blame"
)

var (
	blameStart  int
	blameEnd    int
	blameFormat string
)

var blameCmd = &cobra.Command{
	Use:   "blame <file>",
	Short: "Show per-line commit attribution for a file",
	Long: `Parses git blame output into per-line attributions. Uncommitted lines
are omitted.

Examples:
  revlens blame internal/api/handler.go
  revlens blame main.go --start 10 --end 40 --format=json`,
	Args: cobra.ExactArgs(1),
	Run:  runBlame,
}

func init() {
	blameCmd.Flags().IntVar(&blameStart, "start", 0, "First line (1-based, 0 = whole file)")
	blameCmd.Flags().IntVar(&blameEnd, "end", 0, "Last line (inclusive)")
	blameCmd.Flags().StringVar(&blameFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(blameCmd)
}

func runBlame(cmd *cobra.Command, args []string) {
	file := args[0]

	a, err := newApp(false)
	if err != nil {
		fatalf("%v", err)
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	text, err := a.repo.BlameText(ctx, file, blameStart, blameEnd)
	if err != nil {
		fatalf("%v", err)
	}

	attrs := blame.Parse(text)

	if blameFormat == "json" {
		data, err := json.MarshalIndent(attrs, "", "  ")
		if err != nil {
			fatalf("failed to encode attributions: %v", err)
		}
		fmt.Println(string(data))
		return
	}

	lines := make([]int, 0, len(attrs))
	for n := range attrs {
		lines = append(lines, n)
	}
	sort.Ints(lines)

	for _, n := range lines {
		attr := attrs[n]
		fmt.Printf("%5d  %s  %-20s  %s\n", n, shortCommit(attr.CommitID), attr.Author, attr.Summary)
	}
}
