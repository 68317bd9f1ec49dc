package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
)

var remotesFormat string

var remotesCmd = &cobra.Command{
	Use:   "remotes",
	Short: "Show configured remotes and which provider claims them",
	Args:  cobra.NoArgs,
	Run:   runRemotes,
}

func init() {
	remotesCmd.Flags().StringVar(&remotesFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(remotesCmd)
}

type remoteInfo struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Provider    string `json:"provider,omitempty"`
	Host        string `json:"host,omitempty"`
	ProjectPath string `json:"projectPath,omitempty"`
	Credential  bool   `json:"credential"`
}

func runRemotes(cmd *cobra.Command, args []string) {
	a, err := newApp(false)
	if err != nil {
		fatalf("%v", err)
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	remotes, err := a.repo.Remotes(ctx)
	if err != nil {
		fatalf("%v", err)
	}

	names := make([]string, 0, len(remotes))
	for name := range remotes {
		names = append(names, name)
	}
	sort.Strings(names)

	infos := make([]remoteInfo, 0, len(names))
	for _, name := range names {
		url := remotes[name]
		info := remoteInfo{Name: name, URL: url}
		if p, identity, ok := a.registry.Detect(url); ok {
			info.Provider = p.Identity().ID
			info.Host = identity.Host
			info.ProjectPath = identity.ProjectPath
			info.Credential = p.HasCredential()
		}
		infos = append(infos, info)
	}

	if remotesFormat == "json" {
		data, err := json.MarshalIndent(infos, "", "  ")
		if err != nil {
			fatalf("failed to encode remotes: %v", err)
		}
		fmt.Println(string(data))
		return
	}

	if len(infos) == 0 {
		fmt.Println("No remotes configured.")
		return
	}
	for _, info := range infos {
		fmt.Printf("%s  %s\n", info.Name, info.URL)
		if info.Provider == "" {
			fmt.Println("    provider: none")
			continue
		}
		cred := "no credential"
		if info.Credential {
			cred = "credential present"
		}
		fmt.Printf("    provider: %s (%s/%s, %s)\n", info.Provider, info.Host, info.ProjectPath, cred)
	}
}
