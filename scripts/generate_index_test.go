package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const readme = `# dumpx

Nested tables for structured data.

## Installation

go install github.com/oakwood-commons/dumpx@latest

## Usage

dumpx data.json
`

var dist = []string{
	"dumpx_0.3.0_Linux_x86_64.tar.gz",
	"dumpx_0.3.0_Darwin_arm64.tar.gz",
	"dumpx_0.3.0_Windows_x86_64.zip",
	"dumpx_0.3.0_SHA256SUMS",
	"notes.txt",
}

func TestDetectVersion(t *testing.T) {
	assert.Equal(t, "0.3.0", detectVersion(dist))
	assert.Equal(t, "0.1.0-SNAPSHOT-abc123", detectVersion([]string{"dumpx_0.1.0-SNAPSHOT-abc123_Linux_arm64.tar.gz"}))
	assert.Equal(t, "unknown", detectVersion([]string{"other_1.0.0_Linux_arm64.tar.gz"}))
}

func TestPlatformArchives(t *testing.T) {
	got := platformArchives(dist)
	require.Len(t, got, 3)
	assert.Equal(t, archive{Platform: "Linux (x86_64)", File: "dumpx_0.3.0_Linux_x86_64.tar.gz"}, got[0])
	assert.Equal(t, "Windows (x86_64)", got[1].Platform)
	assert.Equal(t, "macOS (Apple Silicon)", got[2].Platform)
}

func TestWriteIndex(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeIndex(&buf, []byte(readme), dist))
	out := buf.String()

	assert.Contains(t, out, "<title>dumpx")
	assert.Contains(t, out, `<a href="dumpx_0.3.0_Darwin_arm64.tar.gz">download</a>`)
	assert.NotContains(t, out, "go install", "installation section should be replaced")
	assert.Contains(t, out, `<h2 id="usage">Usage</h2>`)
	assert.Contains(t, out, "Built-in configuration")
	assert.Contains(t, out, "containerKind == &#39;map&#39;")
}

func TestReplaceInstallationSectionWithoutSection(t *testing.T) {
	body := `<h2 id="usage">Usage</h2>`
	assert.Equal(t, body, replaceInstallationSection(body, "downloads"))
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	readmePath := filepath.Join(dir, "README.md")
	require.NoError(t, os.WriteFile(readmePath, []byte(readme), 0o600))
	for _, name := range dist {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o600))
	}

	require.NoError(t, run(readmePath, dir))
	data, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "0.3.0")

	assert.Error(t, run(filepath.Join(dir, "missing.md"), dir))
}
