// Command generate_index writes the release page: README.md rendered to
// HTML, with the installation section replaced by the archives found in the
// dist directory and the built-in configuration appended as a reference.
package main

import (
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/oakwood-commons/dumpx/pkg/config"
	"github.com/oakwood-commons/dumpx/pkg/settings"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <dist-dir>\n", os.Args[0])
		os.Exit(1)
	}
	if err := run("README.md", os.Args[1]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(readmePath, distDir string) error {
	readme, err := os.ReadFile(readmePath)
	if err != nil {
		return fmt.Errorf("read %s: %w", readmePath, err)
	}
	entries, err := os.ReadDir(distDir)
	if err != nil {
		return fmt.Errorf("read %s: %w", distDir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}

	indexPath := filepath.Join(distDir, "index.html")
	f, err := os.Create(indexPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", indexPath, err)
	}
	if err := writeIndex(f, readme, names); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Generated %s\n", indexPath)
	return nil
}

func writeIndex(w io.Writer, readme []byte, files []string) error {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags | mdhtml.HrefTargetBlank})
	body := string(markdown.Render(p.Parse(readme), renderer))

	version := detectVersion(files)
	body = replaceInstallationSection(body, downloadsHTML(version, platformArchives(files)))

	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString(body)
	sb.WriteString(configReference())
	sb.WriteString(footer)
	_, err := io.WriteString(w, sb.String())
	return err
}

var archivePattern = regexp.MustCompile(`^` + settings.CliBinaryName + `_([^_]+(?:-[^_]+)*)_(?:Darwin|Linux|Windows)_(?:arm64|x86_64)\.(?:tar\.gz|zip)$`)

// detectVersion finds the version in archive names such as
// dumpx_0.1.0_Darwin_arm64.tar.gz.
func detectVersion(files []string) string {
	for _, name := range files {
		if m := archivePattern.FindStringSubmatch(name); len(m) >= 2 {
			return m[1]
		}
	}
	return "unknown"
}

type archive struct {
	Platform string
	File     string
}

var platforms = []struct {
	key, name string
}{
	{"Darwin_arm64", "macOS (Apple Silicon)"},
	{"Darwin_x86_64", "macOS (Intel)"},
	{"Linux_arm64", "Linux (ARM64)"},
	{"Linux_x86_64", "Linux (x86_64)"},
	{"Windows_arm64", "Windows (ARM64)"},
	{"Windows_x86_64", "Windows (x86_64)"},
}

// platformArchives returns the first archive per platform, sorted by
// platform name. Checksums and other files are ignored.
func platformArchives(files []string) []archive {
	seen := map[string]bool{}
	var out []archive
	for _, name := range files {
		if !strings.HasSuffix(name, ".tar.gz") && !strings.HasSuffix(name, ".zip") {
			continue
		}
		for _, p := range platforms {
			if strings.Contains(name, p.key) && !seen[p.key] {
				seen[p.key] = true
				out = append(out, archive{Platform: p.name, File: name})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Platform < out[j].Platform })
	return out
}

func downloadsHTML(version string, archives []archive) string {
	var sb strings.Builder
	sb.WriteString("  <div class=\"downloads\">\n    <h2>Downloads</h2>\n")
	fmt.Fprintf(&sb, "    <h3>%s</h3>\n    <table class=\"download-table\">\n", html.EscapeString(version))
	for _, a := range archives {
		fmt.Fprintf(&sb, "      <tr><td class=\"platform-name\">%s</td><td><a href=\"%s\">download</a></td></tr>\n",
			html.EscapeString(a.Platform), html.EscapeString(a.File))
	}
	sb.WriteString("    </table>\n  </div>\n")
	return sb.String()
}

// replaceInstallationSection swaps the README installation section for the
// downloads table. The body is returned unchanged when there is no such
// section or it is the last one.
func replaceInstallationSection(body, downloads string) string {
	start := strings.Index(body, `<h2 id="installation">`)
	if start == -1 {
		start = strings.Index(body, `<h2 id="install">`)
	}
	if start == -1 {
		return body
	}
	next := strings.Index(body[start+1:], `<h2 id="`)
	if next == -1 {
		return body
	}
	next += start + 1

	replacement := `<h2 id="installation">Installation</h2>
` + downloads + `
<p>Extract the archive and move the binary to your PATH:</p>
<pre><code class="language-bash">tar -xzf ` + settings.CliBinaryName + `_*.tar.gz
sudo mv ` + settings.CliBinaryName + ` /usr/local/bin/
</code></pre>
`
	return body[:start] + replacement + body[next:]
}

func configReference() string {
	return `<h2 id="configuration-reference">Built-in configuration</h2>
<pre><code class="language-yaml">` + html.EscapeString(string(config.DefaultConfigYAML())) + `</code></pre>
`
}

const header = `<!doctype html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>dumpx - nested tables for structured data</title>
  <style>
    body { font-family: system-ui, -apple-system, sans-serif; max-width: 900px; margin: 40px auto; padding: 0 20px; line-height: 1.6; color: #333; }
    h1 { color: #2563eb; border-bottom: 2px solid #2563eb; padding-bottom: 10px; }
    h2 { color: #1e40af; margin-top: 30px; }
    code { background: #f1f5f9; padding: 2px 6px; border-radius: 3px; font-family: Monaco, Menlo, monospace; font-size: 0.9em; }
    pre { background: #1e293b; color: #e2e8f0; padding: 16px; border-radius: 6px; overflow-x: auto; }
    pre code { background: none; color: inherit; padding: 0; }
    .downloads { background: #eff6ff; padding: 20px; border-radius: 8px; margin: 20px 0; border-left: 4px solid #2563eb; }
    .download-table td { padding: 6px 8px; }
    .platform-name { font-weight: 500; color: #1e3a8a; width: 200px; }
  </style>
</head>
<body>
`

const footer = `</body>
</html>
`
