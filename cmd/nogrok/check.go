package main

import (
	"fmt"
	"io"
	"net/url"

	"github.com/nao1215/nogrok/internal/link"
	"github.com/nao1215/nogrok/internal/model"
	"github.com/spf13/cobra"
)

// defaultCheckPage is the page hrefs are resolved against by default.
const defaultCheckPage = "https://www.google.com/search"

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <href>...",
		Short: "Show where a link leads and whether it would be treated",
		Long: `Check resolves each href the way filter does: relative to the page, plus
one level of redirect parameters (q, url, u, target, dest, redirect, rurl,
l, lurl, href, to) read directly and as base64. It prints every candidate
URL and whether one of them reaches the target domain.

Examples:
  nogrok check "/url?q=https://grokipedia.com/page/Go"
  nogrok check --page https://www.bing.com/search "https://www.bing.com/ck/a?u=a1aHR0cHM6Ly9ncm9raXBlZGlhLmNvbQ"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCheckCmd,
	}

	cmd.Flags().StringP("page", "p", defaultCheckPage, "Page URL the hrefs appear on")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .nogrok in current or home directory)")

	return cmd
}

// runCheckCmd executes the check command.
func runCheckCmd(cmd *cobra.Command, args []string) error {
	page, err := cmd.Flags().GetString("page")
	if err != nil {
		return err
	}
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}

	location, err := url.Parse(page)
	if err != nil || !location.IsAbs() {
		return fmt.Errorf("invalid page URL %q: must be absolute", page)
	}

	file, err := loadConfigFile(configPath)
	if err != nil {
		return err
	}

	resolver := link.NewResolver(location, nil, link.WithRedirectParams(file.RedirectParams...))
	detector := link.NewDetector(file.Target)

	for _, href := range args {
		cands := resolver.ResolveHref(href)
		match, ok := detector.Match(cands)
		printVerdict(cmd.OutOrStdout(), href, cands, match, ok, detector.Target())
	}
	return nil
}

// printVerdict writes the candidates of one href.
func printVerdict(w io.Writer, href string, cands []model.CandidateURL, match model.CandidateURL, ok bool, target string) {
	verdict := "not matched"
	if ok {
		how := "direct"
		if match.Decoded() {
			how = "redirect"
		}
		verdict = fmt.Sprintf("MATCH %s (%s via %s)", target, how, match.Host)
	}

	fmt.Fprintf(w, "%s\n  => %s\n", href, verdict)
	if len(cands) == 0 {
		fmt.Fprintln(w, "  (no candidate URLs)")
		return
	}
	for i, c := range cands {
		fmt.Fprintf(w, "  [%d] depth=%d %s\n", i, c.Depth, c.Raw)
	}
}
