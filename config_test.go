package superopt

import (
	"os"
	"path/filepath"
	"strings"
	test "testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nickandperla.net/superopt/machine"
)

const testToolConfig = `
[search]
max_instructions = 4
mnemonics = ["LOAD", "INC"]
deadline = "2s"
mutation_rate = 0.25
no_prefilter = true

[archive]
path = "/var/lib/superr"
name = "runs.db"
sqlite_pragmas = ["journal_mode(WAL)"]
`

func TestDecodeToolConfig(t *test.T) {
	config, err := DecodeToolConfig(strings.NewReader(testToolConfig))
	require.NoError(t, err)

	assert.Equal(t, 4, config.Search.MaxInstructions)
	assert.Equal(t, []string{"LOAD", "INC"}, config.Search.Mnemonics)
	assert.Equal(t, 2*time.Second, config.Search.Deadline)
	assert.Equal(t, 0.25, config.Search.MutationRate)
	assert.True(t, config.Search.NoPrefilter)
	assert.Equal(t, "runs.db", config.Archive.Name)
	assert.Equal(t, []string{"journal_mode(WAL)"}, config.Archive.SQLitePragmas)
}

func TestDecodeToolConfigRejectsUnknownKeys(t *test.T) {
	_, err := DecodeToolConfig(strings.NewReader("[search]\nmax_instruction = 4\n"))
	assert.ErrorContains(t, err, "max_instruction")

	_, err = DecodeToolConfig(strings.NewReader("[search\n"))
	assert.Error(t, err)
}

func TestLoadToolConfig(t *test.T) {
	path := filepath.Join(t.TempDir(), "superr.toml")
	require.NoError(t, os.WriteFile(path, []byte(testToolConfig), 0o644))

	config, err := LoadToolConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 4, config.Search.MaxInstructions)

	_, err = LoadToolConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestMergeOptions(t *test.T) {
	base := DefaultOptions()
	base.Logger = quietLogger()

	overlay := Options{MaxInstructions: 4, Mnemonics: []string{"INC"}, Deadline: time.Second}
	merged, err := Merge(base, overlay)
	require.NoError(t, err)

	assert.Equal(t, 4, merged.MaxInstructions)
	assert.Equal(t, []string{"INC"}, merged.Mnemonics)
	assert.Equal(t, time.Second, merged.Deadline)
	assert.Equal(t, DefaultMaxNum, merged.MaxNum)
	assert.Equal(t, DefaultPopulationSize, merged.PopulationSize)
	assert.Same(t, base.Logger, merged.Logger)
	assert.Equal(t, DefaultMnemonics, base.Mnemonics)

	merged.Mnemonics[0] = "SUB"
	assert.Equal(t, "INC", overlay.Mnemonics[0])
}

func TestOptionsWithDefaults(t *test.T) {
	o := Options{}.withDefaults(7)
	assert.Equal(t, 6, o.MaxInstructions)
	assert.Equal(t, DefaultStagnationLimit, o.StagnationLimit)
	assert.NotNil(t, o.Logger)
	assert.NoError(t, o.Validate())

	assert.Zero(t, Options{}.withDefaults(0).MaxInstructions)

	o = Options{MinImm: 0, MaxNum: 0}.withDefaults(3)
	assert.Zero(t, o.MaxNum)
	o = Options{MinImm: 2, MaxNum: 9}.withDefaults(3)
	assert.Equal(t, uint8(9), o.MaxNum)
}

func TestOptionsValidate(t *test.T) {
	o := DefaultOptions()
	o.MinImm, o.MaxNum = 9, 2
	assert.ErrorIs(t, o.Validate(), ErrInvalidOptions)

	o = DefaultOptions()
	o.Mnemonics = []string{"NOP"}
	assert.ErrorIs(t, o.Validate(), ErrInvalidOptions)

	o = DefaultOptions()
	o.Deadline = -time.Second
	assert.ErrorIs(t, o.Validate(), ErrInvalidOptions)
}

func TestZeroImmediateRangeKept(t *test.T) {
	opts := testOptions()
	opts.MinImm, opts.MaxNum = 0, 0
	require.NoError(t, opts.Validate())

	sc := makeSearchContext(t, StrategyRandom, opts)
	assert.Zero(t, sc.Options.MaxNum)

	gen := sc.newGenerator(0)
	for _, ins := range gen.Program(500) {
		if ins.Op == machine.OP_LOAD {
			assert.Zero(t, ins.A, "LOAD immediate outside 0..0")
		}
	}
}
