package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"revlens/internal/config"
	"revlens/internal/gitrepo"
)

var configShowFormat string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect revlens configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long:  "Prints the merged configuration: file values where set, defaults elsewhere.",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func init() {
	configShowCmd.Flags().StringVar(&configShowFormat, "format", "yaml", "Output format (yaml, json)")
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	repo, err := gitrepo.Open(repoFlag)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig(repo.Root())
	if err != nil {
		return err
	}

	switch configShowFormat {
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
	default:
		return fmt.Errorf("unknown format: %s", configShowFormat)
	}
	return nil
}
