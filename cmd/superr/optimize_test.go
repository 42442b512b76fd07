package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	test "testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nickandperla.net/superopt"
	"nickandperla.net/superopt/machine"
)

func TestSearchOptionsPrecedence(t *test.T) {
	config, err := superopt.DecodeToolConfig(strings.NewReader(`
[search]
max_num = 7
workers = 3
mnemonics = ["INC"]
`))
	require.NoError(t, err)

	require.NoError(t, optimizeCmd.Flags().Parse([]string{"--max-imm", "9", "--deadline", "2s"}))
	opts, err := searchOptions(optimizeCmd, config)
	require.NoError(t, err)

	assert.Equal(t, uint8(9), opts.MaxNum)
	assert.Equal(t, 3, opts.Workers)
	assert.Equal(t, []string{"INC"}, opts.Mnemonics)
	assert.Equal(t, 2*time.Second, opts.Deadline)
	assert.Equal(t, superopt.DefaultPopulationSize, opts.PopulationSize)
	assert.NotNil(t, opts.Logger)
}

func TestReadProgram(t *test.T) {
	path := filepath.Join(t.TempDir(), "fill.sr")
	require.NoError(t, os.WriteFile(path, []byte("# fill\nLOAD 3\nSWAP 0 1\n\nLOAD 3\n"), 0o644))

	p, err := readProgram(path, programFormat{name: "text"})
	require.NoError(t, err)
	assert.Equal(t, "LOAD 3\nSWAP 0 1\nLOAD 3", p.String())

	_, err = readProgram(filepath.Join(t.TempDir(), "missing"), programFormat{})
	assert.Error(t, err)
}

func TestReadProgramCompact(t *test.T) {
	p, err := machine.ParseProgramString("LOAD 3\nSWAP 0 1\nPUT 2")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeProgram(&buf, p, programFormat{name: "compact"}))
	path := filepath.Join(t.TempDir(), "fill.bin")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	decoded, err := readProgram(path, programFormat{name: "compact"})
	require.NoError(t, err)
	assert.Equal(t, p, decoded)

	_, err = readProgram(path, programFormat{name: "octal"})
	assert.Error(t, err)
}

func TestReadProgramLenient(t *test.T) {
	path := filepath.Join(t.TempDir(), "broken.sr")
	require.NoError(t, os.WriteFile(path, []byte("LOAD 3\nFROB 1\nINC 2\n"), 0o644))

	_, err := readProgram(path, programFormat{name: "text"})
	assert.ErrorIs(t, err, machine.ErrMalformedInstruction)

	p, err := readProgram(path, programFormat{name: "text", lenient: true})
	require.NoError(t, err)
	assert.Equal(t, "LOAD 3\nINC 2", p.String())
}

func TestRunCommand(t *test.T) {
	path := filepath.Join(t.TempDir(), "put.sr")
	require.NoError(t, os.WriteFile(path, []byte("INC 2\nPUT 2\n"), 0o644))

	var out bytes.Buffer
	runCmd.SetOut(&out)
	require.NoError(t, runProgram(runCmd, []string{path}))
	assert.Contains(t, out.String(), "state:  [0 0 1 0]")
	assert.Contains(t, out.String(), "output: [1]")
	assert.Contains(t, out.String(), "steps:  2")
}

func TestArchiveConfigFromFlag(t *test.T) {
	optArchive = "/tmp/superr/runs.db"
	defer func() { optArchive = "" }()

	archive := archiveConfig(&superopt.ToolConfig{Archive: superopt.ArchiveConfig{SQLitePragmas: []string{"journal_mode(WAL)"}}})
	assert.Equal(t, "/tmp/superr/", archive.Path)
	assert.Equal(t, "runs.db", archive.Name)
	assert.Equal(t, []string{"journal_mode(WAL)"}, archive.SQLitePragmas)
}

func TestSearchOptionsZeroImmediate(t *test.T) {
	require.NoError(t, optimizeCmd.Flags().Parse([]string{"--max-imm", "0", "--min-imm", "0"}))
	opts, err := searchOptions(optimizeCmd, &superopt.ToolConfig{})
	require.NoError(t, err)
	assert.Zero(t, opts.MaxNum)
	assert.NoError(t, opts.Validate())
}
