package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	clearEnv(t)
	a := &app{logger: zaptest.NewLogger(t)}
	cmd := newRootCmd(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "none.yaml")))
	err := cmd.Execute()
	return out.String(), err
}

func TestWordsCommand(t *testing.T) {
	input := writeInput(t, sampleText)
	posFile := filepath.Join(t.TempDir(), "xmas_positions.txt")

	out, err := runCLI(t, "words", input, "--out", posFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Grid dimensions: 10x10")
	assert.Contains(t, out, "Total occurrences of XMAS: 18")

	data, err := os.ReadFile(posFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 18)
}

func TestWordsCommandJSON(t *testing.T) {
	input := writeInput(t, sampleText)

	out, err := runCLI(t, "words", input, "--word", "SAMX", "--format", "json", "--workers", "3")
	require.NoError(t, err)

	var rep report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, 18, rep.Count)
	assert.Len(t, rep.Matches, 18)
	assert.Equal(t, "SAMX", rep.Pattern)
}

func TestMotifsCommand(t *testing.T) {
	input := writeInput(t, sampleText)

	out, err := runCLI(t, "motifs", input)
	require.NoError(t, err)
	assert.Contains(t, out, "Found 9 X-MAS patterns")
	assert.Equal(t, 9, strings.Count(out, "X pattern center at:"))
}

func TestRaggedInput(t *testing.T) {
	input := writeInput(t, "XMASX\nSAM\nXMAS\n")

	_, err := runCLI(t, "words", input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed grid")

	out, err := runCLI(t, "words", input, "--ragged", "clip")
	require.NoError(t, err)
	assert.Contains(t, out, "Grid dimensions: 3x3")
}

func TestCommandErrors(t *testing.T) {
	input := writeInput(t, sampleText)

	_, err := runCLI(t, "words", input, "--word", "")
	require.NoError(t, err, "empty flag falls back to the configured word")

	_, err = runCLI(t, "motifs", input, "--motif", "MA")
	assert.Error(t, err)

	_, err = runCLI(t, "words", input, "--format", "xml")
	assert.Error(t, err)

	_, err = runCLI(t, "words", filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)

	_, err = runCLI(t, "words")
	assert.Error(t, err)
}
