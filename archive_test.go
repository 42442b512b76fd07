package superopt

import (
	"context"
	test "testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nickandperla.net/superopt/machine"
)

func TestArchiveDSN(t *test.T) {
	config := &ArchiveConfig{
		Path:          "/var/lib/superr",
		Name:          "runs.db",
		SQLitePragmas: []string{"journal_mode(WAL)", "busy_timeout(5000)"},
		SQLiteOptions: []string{"_txlock=immediate"},
	}
	assert.Equal(t, "/var/lib/superr/runs.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_txlock=immediate", config.DSN())

	config.SQLitePragmas = nil
	assert.Equal(t, "/var/lib/superr/runs.db?_txlock=immediate", config.DSN())

	config.SQLiteOptions = nil
	assert.Equal(t, "/var/lib/superr/runs.db", config.DSN())

	memory := &ArchiveConfig{Path: ":memory:", Name: "runs", SQLitePragmas: []string{"foreign_keys(1)"}}
	assert.Equal(t, "file:runs?mode=memory&cache=shared&_pragma=foreign_keys(1)", memory.DSN())
}

func TestNewArchiveRequiresLocation(t *test.T) {
	_, err := NewArchive(nil)
	assert.Error(t, err)
	_, err = NewArchive(&ArchiveConfig{Name: "runs.db"})
	assert.Error(t, err)
	_, err = NewArchive(&ArchiveConfig{Path: t.TempDir()})
	assert.Error(t, err)
}

func TestArchiveRecordAndRecent(t *test.T) {
	archive, err := NewArchive(&ArchiveConfig{Path: t.TempDir(), Name: "runs.db"})
	require.NoError(t, err)
	defer archive.Close()

	input := machine.Program{machine.Inc(0), machine.Inc(1), machine.Inc(0), machine.Decr(1)}
	opts := testOptions()
	opts.Mnemonics = []string{"INC", "DECR"}

	for n := 0; n < 3; n++ {
		result, err := Optimize(context.Background(), input, StrategyExhaustive, opts)
		require.NoError(t, err)
		id, err := archive.Record(result)
		require.NoError(t, err)
		assert.Equal(t, uint(n+1), id)
	}

	runs, err := archive.Recent(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, uint(3), runs[0].ID)

	run := runs[0]
	assert.Equal(t, "exhaustive", run.Strategy)
	assert.Equal(t, "[2 0 0 0]", run.Target)
	assert.Equal(t, 4, run.InputLength)
	assert.Equal(t, 2, run.ResultLength)
	assert.Equal(t, "INC 0\nINC 0", run.Program)
	assert.False(t, run.Cancelled)
	assert.WithinDuration(t, time.Now(), run.CreatedAt, time.Minute)
	require.NotEmpty(t, run.Improvements)
	assert.Equal(t, 2, run.Improvements[len(run.Improvements)-1].Length)

	parsed, err := machine.ParseProgramString(run.Input)
	require.NoError(t, err)
	assert.True(t, input.Equal(parsed))

	_, err = archive.Record(nil)
	assert.Error(t, err)
}
