package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/cobra"

	"revlens/internal/blame"
	"revlens/internal/hosting"
)

var annotateOut string

var annotateCmd = &cobra.Command{
	Use:   "annotate <file>",
	Short: "Resolve every line of a file to its change request",
	Long: `Blames a whole file and resolves each distinct commit to its change
request. Lines sharing a commit share one resolution; the cache and the
request coalescer keep this to one provider call per commit.

Output is a JSON annotation document, written to stdout or, with --out, to
a file. An .gz suffix gzip-compresses it.

Examples:
  revlens annotate internal/api/handler.go
  revlens annotate main.go --out main-annotations.json.gz`,
	Args: cobra.ExactArgs(1),
	Run:  runAnnotate,
}

func init() {
	annotateCmd.Flags().StringVar(&annotateOut, "out", "", "Write to a file instead of stdout (.gz compresses)")
	rootCmd.AddCommand(annotateCmd)
}

type lineAnnotation struct {
	Line          int                    `json:"line"`
	Commit        string                 `json:"commit"`
	Author        string                 `json:"author"`
	Summary       string                 `json:"summary,omitempty"`
	ChangeRequest *hosting.ChangeRequest `json:"changeRequest"`
}

type annotateDocument struct {
	File        string           `json:"file"`
	GeneratedAt time.Time        `json:"generatedAt"`
	Lines       []lineAnnotation `json:"lines"`
}

func runAnnotate(cmd *cobra.Command, args []string) {
	file := args[0]

	a, err := newApp(true)
	if err != nil {
		fatalf("%v", err)
	}
	defer a.Close()
	a.startWatcher()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	text, err := a.repo.BlameText(ctx, file, 0, 0)
	if err != nil {
		fatalf("%v", err)
	}

	attrs := blame.Parse(text)

	lines := make([]int, 0, len(attrs))
	for n := range attrs {
		lines = append(lines, n)
	}
	sort.Ints(lines)

	doc := annotateDocument{
		File:        file,
		GeneratedAt: time.Now().UTC(),
		Lines:       make([]lineAnnotation, 0, len(lines)),
	}

	for _, n := range lines {
		attr := attrs[n]
		out := a.engine.Resolve(ctx, attr)
		doc.Lines = append(doc.Lines, lineAnnotation{
			Line:          n,
			Commit:        attr.CommitID,
			Author:        attr.Author,
			Summary:       attr.Summary,
			ChangeRequest: out.ChangeRequest,
		})
	}

	if err := writeAnnotations(doc, annotateOut); err != nil {
		fatalf("%v", err)
	}
}

func writeAnnotations(doc annotateDocument, out string) error {
	var w io.Writer = os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", out, err)
		}
		defer f.Close()
		w = f

		if strings.HasSuffix(out, ".gz") {
			gz := gzip.NewWriter(f)
			defer gz.Close()
			w = gz
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
