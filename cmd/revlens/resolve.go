package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"revlens/internal/blame"
	"revlens/internal/hosting"
)

var resolveFormat string

var resolveCmd = &cobra.Command{
	Use:   "resolve <file> <line>",
	Short: "Resolve a file line to its change request",
	Long: `Blames one line, then resolves the commit that last touched it to the
merge/pull request that landed it.

Examples:
  revlens resolve internal/api/handler.go 42
  revlens resolve README.md 1 --format=json`,
	Args: cobra.ExactArgs(2),
	Run:  runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&resolveFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(resolveCmd)
}

type resolveResult struct {
	File          string                 `json:"file"`
	Line          int                    `json:"line"`
	Commit        string                 `json:"commit"`
	Author        string                 `json:"author"`
	Summary       string                 `json:"summary,omitempty"`
	Checked       bool                   `json:"checked"`
	ChangeRequest *hosting.ChangeRequest `json:"changeRequest"`
}

func runResolve(cmd *cobra.Command, args []string) {
	line, err := strconv.Atoi(args[1])
	if err != nil || line < 1 {
		fatalf("invalid line number: %s", args[1])
	}
	file := args[0]

	a, err := newApp(true)
	if err != nil {
		fatalf("%v", err)
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	text, err := a.repo.BlameText(ctx, file, line, line)
	if err != nil {
		fatalf("%v", err)
	}

	attrs := blame.Parse(text)
	attr, ok := attrs[line]
	if !ok {
		fatalf("line %d of %s has no committed attribution", line, file)
	}

	out := a.engine.Resolve(ctx, attr)

	result := resolveResult{
		File:          file,
		Line:          line,
		Commit:        attr.CommitID,
		Author:        attr.Author,
		Summary:       attr.Summary,
		Checked:       out.Checked,
		ChangeRequest: out.ChangeRequest,
	}

	if resolveFormat == "json" {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			fatalf("failed to encode result: %v", err)
		}
		fmt.Println(string(data))
		return
	}

	printResolveHuman(result)
}

func printResolveHuman(r resolveResult) {
	fmt.Printf("%s:%d\n", r.File, r.Line)
	fmt.Printf("  commit  %s\n", shortCommit(r.Commit))
	fmt.Printf("  author  %s\n", r.Author)
	if r.Summary != "" {
		fmt.Printf("  summary %s\n", r.Summary)
	}

	switch {
	case r.ChangeRequest != nil:
		cr := r.ChangeRequest
		fmt.Printf("  change request  #%d %s\n", cr.Number, cr.Title)
		fmt.Printf("  state   %s\n", coloredState(cr.State))
		if cr.MergedAt != nil {
			fmt.Printf("  merged  %s\n", cr.MergedAt.Format("2006-01-02"))
		}
		fmt.Printf("  url     %s\n", cr.URL)
	case r.Checked:
		fmt.Println("  change request  none")
	default:
		fmt.Println("  change request  not checked (no remote, provider or credential)")
	}
}

func coloredState(s hosting.State) string {
	switch s {
	case hosting.StateMerged:
		return color.GreenString(string(s))
	case hosting.StateOpen:
		return color.CyanString(string(s))
	default:
		return color.RedString(string(s))
	}
}

func shortCommit(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
