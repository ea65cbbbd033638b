package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

const testLayout = `<!DOCTYPE html>
<html lang="ru"><head><title>Media Sync Bot</title></head>
<body>
<nav id="navbar"><ul class="nav-links">
<li><a href="index.html">Home</a></li>
<li><a href="faq.html">FAQ</a></li>
</ul></nav>
<main>%s</main>
</body></html>`

// writeSite writes a small static site into a temporary directory.
func writeSite(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	pages := map[string]string{
		"index.html": `<h1>Home</h1><p class="page-subtitle">Sync media</p><a href="faq.html">FAQ</a> <a href="gone.html">Gone</a>`,
		"faq.html":   `<h1>FAQ</h1><p class="page-subtitle">Questions</p><a href="index.html">Home</a>`,
	}
	for name, body := range pages {
		markup := strings.Replace(testLayout, "%s", body, 1)
		if err := os.WriteFile(filepath.Join(dir, name), []byte(markup), 0600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// execute runs cmd with args and stdin, returning what it printed.
func execute(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}
