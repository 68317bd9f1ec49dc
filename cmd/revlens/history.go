package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	historyLimit  int
	historyFormat string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent resolutions",
	Long:  "Lists the most recent settled resolutions from the per-repository history log.",
	Args:  cobra.NoArgs,
	Run:   runHistory,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove history entries older than the retention window",
	Args:  cobra.NoArgs,
	Run:   runHistoryPrune,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum entries to show")
	historyCmd.Flags().StringVar(&historyFormat, "format", "human", "Output format (json, human)")
	historyCmd.AddCommand(historyPruneCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) {
	a, err := newApp(true)
	if err != nil {
		fatalf("%v", err)
	}
	defer a.Close()

	if a.history == nil {
		fatalf("history is disabled in configuration")
	}

	entries, err := a.history.Recent(historyLimit)
	if err != nil {
		fatalf("%v", err)
	}

	if historyFormat == "json" {
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			fatalf("failed to encode history: %v", err)
		}
		fmt.Println(string(data))
		return
	}

	if len(entries) == 0 {
		fmt.Println("No resolutions recorded yet.")
		return
	}
	for _, e := range entries {
		when := e.ResolvedAt.Local().Format("2006-01-02 15:04")
		switch {
		case e.Error != "":
			fmt.Printf("%s  %s %s  error: %s\n", when, e.Provider, shortCommit(e.CommitID), e.Error)
		case e.Number == 0:
			fmt.Printf("%s  %s %s  no change request\n", when, e.Provider, shortCommit(e.CommitID))
		default:
			fmt.Printf("%s  %s %s  #%d %s\n", when, e.Provider, shortCommit(e.CommitID), e.Number, e.Title)
		}
	}
}

func runHistoryPrune(cmd *cobra.Command, args []string) {
	a, err := newApp(true)
	if err != nil {
		fatalf("%v", err)
	}
	defer a.Close()

	if a.history == nil {
		fatalf("history is disabled in configuration")
	}

	retention := time.Duration(a.cfg.History.RetentionDays) * 24 * time.Hour
	n, err := a.history.Prune(retention)
	if err != nil {
		fatalf("%v", err)
	}
	fmt.Printf("Pruned %d entries older than %d days.\n", n, a.cfg.History.RetentionDays)
}
