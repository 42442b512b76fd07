package superopt

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/jinzhu/copier"
	"github.com/sirupsen/logrus"

	"nickandperla.net/superopt/machine"
)

// Options are the bounds and tuning knobs of a single search run.
type Options struct {
	MaxInstructions  int           `toml:"max_instructions"`
	MaxNum           uint8         `toml:"max_num"`
	MinImm           uint8         `toml:"min_imm"`
	StepBudget       uint          `toml:"step_budget"`
	Workers          int           `toml:"workers"`
	Seed             int64         `toml:"seed"`
	ProgressInterval time.Duration `toml:"progress_interval"`
	Deadline         time.Duration `toml:"deadline"`
	Mnemonics        []string      `toml:"mnemonics"`
	NoPrefilter      bool          `toml:"no_prefilter"`
	BatchSize        int           `toml:"batch_size"`
	PopulationSize   int           `toml:"population_size"`
	MutationRate     float64       `toml:"mutation_rate"`
	StagnationLimit  int           `toml:"stagnation_limit"`

	Logger logrus.FieldLogger `toml:"-"`
	// Progress receives the status line. Nil disables it.
	Progress io.Writer `toml:"-"`
	// Live rewrites a single line with '\r' instead of logging every tick.
	Live    bool     `toml:"-"`
	Metrics *Metrics `toml:"-"`
}

func DefaultOptions() Options {
	return Options{
		MaxNum:           DefaultMaxNum,
		MinImm:           DefaultMinImm,
		StepBudget:       machine.DefaultStepBudget,
		Workers:          DefaultWorkers(),
		ProgressInterval: DefaultProgressInterval,
		Mnemonics:        append([]string{}, DefaultMnemonics...),
		BatchSize:        DefaultBatchSize,
		PopulationSize:   DefaultPopulationSize,
		MutationRate:     DefaultMutationRate,
		StagnationLimit:  DefaultStagnationLimit,
	}
}

// Merge overlays every non-zero field of o onto a copy of base.
// Runtime hooks (Logger, Progress, Metrics) are taken from o when set and are
// never deep copied.
func Merge(base, o Options) (Options, error) {
	logger, progress, metrics := o.Logger, o.Progress, o.Metrics
	o.Logger, o.Progress, o.Metrics = nil, nil, nil

	merged := base
	merged.Logger, merged.Progress, merged.Metrics = nil, nil, nil
	merged.Mnemonics = append([]string{}, base.Mnemonics...)
	if err := copier.CopyWithOption(&merged, &o, copier.Option{IgnoreEmpty: true, DeepCopy: true}); err != nil {
		return base, fmt.Errorf("failed to merge options: %w", err)
	}

	merged.Logger, merged.Progress, merged.Metrics = base.Logger, base.Progress, base.Metrics
	if logger != nil {
		merged.Logger = logger
	}
	if progress != nil {
		merged.Progress = progress
	}
	if metrics != nil {
		merged.Metrics = metrics
	}
	return merged, nil
}

// withDefaults fills the fields a caller left zero. MaxInstructions defaults
// to one less than the input length since nothing longer can improve it.
// The immediate range is taken as given: 0..0 is a valid range.
func (o Options) withDefaults(inputLength int) Options {
	d := DefaultOptions()
	if o.MaxInstructions == 0 {
		o.MaxInstructions = inputLength - 1
		if o.MaxInstructions < 0 {
			o.MaxInstructions = 0
		}
	}
	if o.StepBudget == 0 {
		o.StepBudget = d.StepBudget
	}
	if o.Workers == 0 {
		o.Workers = d.Workers
	}
	if o.ProgressInterval == 0 {
		o.ProgressInterval = d.ProgressInterval
	}
	if len(o.Mnemonics) == 0 {
		o.Mnemonics = d.Mnemonics
	}
	if o.BatchSize == 0 {
		o.BatchSize = d.BatchSize
	}
	if o.PopulationSize == 0 {
		o.PopulationSize = d.PopulationSize
	}
	if o.MutationRate == 0 {
		o.MutationRate = d.MutationRate
	}
	if o.StagnationLimit == 0 {
		o.StagnationLimit = d.StagnationLimit
	}
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	return o
}

// Validate reports the first bad bound, wrapped in ErrInvalidOptions.
func (o Options) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidOptions, fmt.Sprintf(format, args...))
	}
	switch {
	case o.MaxInstructions < 0:
		return invalid("max_instructions [%d] is negative", o.MaxInstructions)
	case o.MinImm > o.MaxNum:
		return invalid("min_imm [%d] is greater than max_num [%d]", o.MinImm, o.MaxNum)
	case o.Workers < 0:
		return invalid("workers [%d] is negative", o.Workers)
	case o.BatchSize < 0:
		return invalid("batch_size [%d] is negative", o.BatchSize)
	case o.PopulationSize < 0 || o.PopulationSize == 1:
		return invalid("population_size [%d] must be at least 2", o.PopulationSize)
	case o.MutationRate < 0 || o.MutationRate > 1:
		return invalid("mutation_rate [%g] is not in [0, 1]", o.MutationRate)
	case o.StagnationLimit < 0:
		return invalid("stagnation_limit [%d] is negative", o.StagnationLimit)
	case o.ProgressInterval < 0 || o.Deadline < 0:
		return invalid("durations must not be negative")
	}
	if _, err := ParseMnemonics(o.Mnemonics); err != nil {
		return invalid("%v", err)
	}
	return nil
}

// ArchiveConfig locates the results database.
type ArchiveConfig struct {
	Path          string   `toml:"path"`
	Name          string   `toml:"name"`
	SQLitePragmas []string `toml:"sqlite_pragmas"`
	SQLiteOptions []string `toml:"sqlite_options"`
}

// ToolConfig is the TOML file shared by the superr commands.
type ToolConfig struct {
	Search  Options       `toml:"search"`
	Archive ArchiveConfig `toml:"archive"`
}

func LoadToolConfig(path string) (*ToolConfig, error) {
	conffile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to load tool config: %w", err)
	}
	defer conffile.Close()
	return DecodeToolConfig(conffile)
}

func DecodeToolConfig(r io.Reader) (*ToolConfig, error) {
	var config ToolConfig
	md, err := toml.NewDecoder(r).Decode(&config)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal tool config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown tool config keys: %v", undecoded)
	}
	return &config, nil
}
