package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"revlens/internal/config"
	"revlens/internal/gitrepo"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize revlens configuration",
	Long:  "Creates a .revlens/ directory with default configuration in the repository root",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing configuration")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	repo, err := gitrepo.Open(repoFlag)
	if err != nil {
		return err
	}

	configPath := filepath.Join(repo.Root(), ".revlens", "config.json")
	if _, statErr := os.Stat(configPath); statErr == nil && !initForce {
		// Idempotent: already initialized is success (CI-friendly).
		fmt.Println("revlens already initialized.")
		fmt.Printf("Configuration at: %s\n", configPath)
		fmt.Println("\nRun 'revlens init --force' to overwrite.")
		return nil
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(repo.Root()); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}

	fmt.Println("revlens initialized.")
	fmt.Printf("Configuration at: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  - export GITLAB_TOKEN or GITHUB_TOKEN (or REVLENS_-prefixed variants)")
	fmt.Println("  - set providers.<id>.baseUrl for self-hosted installs")
	fmt.Println("  - run 'revlens resolve <file> <line>'")
	return nil
}
