package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"revlens/internal/config"
	"revlens/internal/hosting"
	"revlens/internal/logging"
	"revlens/internal/version"
)

var (
	repoFlag    string
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "revlens",
	Short: "revlens - commit to change request resolution",
	Long: `revlens maps file lines to the commits that last touched them and to the
merge/pull requests that landed those commits on GitLab or GitHub,
self-hosted installs included.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("revlens version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&repoFlag, "repo", ".", "Repository path (any directory inside it)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging")
}

// newLogger builds a logger from the loaded config, with --verbose forcing
// debug level.
func newLogger(cfg *config.Config) *logging.Logger {
	level := logging.LogLevel(cfg.Logging.Level)
	if verboseFlag {
		level = logging.DebugLevel
	}
	return logging.NewLogger(logging.Config{
		Format: logging.Format(cfg.Logging.Format),
		Level:  level,
	})
}

// cliNotifier surfaces provider failures on stderr. The ShouldNotify gate
// keeps it to one warning per provider until the credential changes.
type cliNotifier struct{}

func (cliNotifier) Notify(pe *hosting.ProviderError, id hosting.Identity) {
	if !pe.ShouldNotify {
		return
	}
	color.New(color.FgYellow).Fprintf(os.Stderr, "warning: %s: %s\n", id.DisplayName, pe.Message)
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
