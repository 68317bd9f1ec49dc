package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Inspect provider credentials",
}

var tokenStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which providers have a credential",
	Long: `Shows, per registered provider, whether a token is available. Tokens come
from the environment (REVLENS_GITLAB_TOKEN, GITLAB_TOKEN, REVLENS_GITHUB_TOKEN,
GITHUB_TOKEN, or the variable named by providers.<id>.tokenEnv). Tokens are
never printed.`,
	Args: cobra.NoArgs,
	Run:  runTokenStatus,
}

func init() {
	tokenCmd.AddCommand(tokenStatusCmd)
	rootCmd.AddCommand(tokenCmd)
}

func runTokenStatus(cmd *cobra.Command, args []string) {
	a, err := newApp(false)
	if err != nil {
		fatalf("%v", err)
	}
	defer a.Close()

	for _, p := range a.registry.Providers() {
		id := p.Identity()
		if p.HasCredential() {
			fmt.Printf("%-8s %s\n", id.DisplayName, color.GreenString("credential present"))
		} else {
			fmt.Printf("%-8s %s\n", id.DisplayName, color.RedString("no credential"))
		}
	}
}
