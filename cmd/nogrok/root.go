package main

import (
	"fmt"
	"os"

	"github.com/nao1215/nogrok/internal/config"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for nogrok.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nogrok",
		Short: "Hide, gray out or keep search results that link to Grokipedia",
		Long: `nogrok finds search results that link to a target domain (default
"grokipedia"), either directly or through a provider redirect such as
/url?q=... or a base64 encoded parameter, and treats the whole result entry.

The treatment mode (hide, gray, keep) and the counts of treated results are
persisted in a state database, shared by every command.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().String("db-dir", config.XDGDataDir(), "Directory of the state database")

	cmd.AddCommand(NewFilterCmd())
	cmd.AddCommand(NewModeCmd())
	cmd.AddCommand(NewStatsCmd())
	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
