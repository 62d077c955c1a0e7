package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const googleURL = "https://www.google.com/search?q=go"

const googlePage = `<html><head><title>go - Google Search</title></head><body>
<div id="search">
<div class="g" id="r1"><a href="https://grokipedia.com/page/Go">Go - Grokipedia</a></div>
<div class="g" id="r2"><a href="https://go.dev/">The Go Programming Language</a></div>
</div>
</body></html>`

const moreGoogleResults = `<div class="g" id="r3"><a href="/url?q=https://grokipedia.com/page/Gopher">Gopher</a></div>`

// runRoot executes the root command with a private state database.
func runRoot(t *testing.T, dbDir string, stdin string, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--db-dir", dbDir}, args...))

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}
