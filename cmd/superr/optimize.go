package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"nickandperla.net/superopt"
	"nickandperla.net/superopt/machine"
)

var (
	optStrategy    string
	optFormat      programFormat
	optArchive     string
	optMetricsAddr string
	optFlags       superopt.Options

	optimizeCmd = &cobra.Command{
		Use:   "optimize [file|-]",
		Short: "Search for a shorter program with the same final state",
		Args:  cobra.MaximumNArgs(1),
		RunE:  optimizeProgram,
	}
)

func init() {
	f := optimizeCmd.Flags()
	f.StringVarP(&optStrategy, "optimizer", "o", "random", "Strategy: random, exhaustive, diffing or genetic")
	optFormat.register(optimizeCmd, true)
	f.StringVar(&optArchive, "archive", "", "SQLite file to record the run in")
	f.StringVar(&optMetricsAddr, "metrics-addr", "", "Serve prometheus metrics on this address")

	f.IntVar(&optFlags.MaxInstructions, "max-instructions", 0, "Longest candidate, 0 for input length - 1")
	f.Uint8Var(&optFlags.MaxNum, "max-imm", superopt.DefaultMaxNum, "Largest LOAD immediate")
	f.Uint8Var(&optFlags.MinImm, "min-imm", superopt.DefaultMinImm, "Smallest LOAD immediate")
	f.UintVar(&optFlags.StepBudget, "step-budget", machine.DefaultStepBudget, "Maximum executed instructions per candidate")
	f.IntVarP(&optFlags.Workers, "workers", "w", superopt.DefaultWorkers(), "Search workers")
	f.Int64Var(&optFlags.Seed, "seed", 0, "Random seed, 0 for time based")
	f.DurationVar(&optFlags.Deadline, "deadline", 0, "Stop after this long, 0 for no limit")
	f.DurationVar(&optFlags.ProgressInterval, "progress-interval", superopt.DefaultProgressInterval, "Time between progress lines")
	f.StringSliceVar(&optFlags.Mnemonics, "mnemonics", superopt.DefaultMnemonics, "Generator vocabulary")
	f.BoolVar(&optFlags.NoPrefilter, "no-prefilter", false, "Run every random candidate, even provably wasteful ones")
	f.IntVar(&optFlags.BatchSize, "batch-size", superopt.DefaultBatchSize, "Exhaustive candidates per batch")
	f.IntVar(&optFlags.PopulationSize, "population-size", superopt.DefaultPopulationSize, "Genetic population size")
	f.Float64Var(&optFlags.MutationRate, "mutation-rate", superopt.DefaultMutationRate, "Genetic per-instruction mutation chance")
	f.IntVar(&optFlags.StagnationLimit, "stagnation-limit", superopt.DefaultStagnationLimit, "Diffing misses before the climb restarts")
}

// searchOptions layers defaults, the config file and explicitly set flags.
func searchOptions(cmd *cobra.Command, config *superopt.ToolConfig) (superopt.Options, error) {
	opts, err := superopt.Merge(superopt.DefaultOptions(), config.Search)
	if err != nil {
		return opts, err
	}

	f := cmd.Flags()
	set := func(name string, apply func()) {
		if f.Changed(name) {
			apply()
		}
	}
	set("max-instructions", func() { opts.MaxInstructions = optFlags.MaxInstructions })
	set("max-imm", func() { opts.MaxNum = optFlags.MaxNum })
	set("min-imm", func() { opts.MinImm = optFlags.MinImm })
	set("step-budget", func() { opts.StepBudget = optFlags.StepBudget })
	set("workers", func() { opts.Workers = optFlags.Workers })
	set("seed", func() { opts.Seed = optFlags.Seed })
	set("deadline", func() { opts.Deadline = optFlags.Deadline })
	set("progress-interval", func() { opts.ProgressInterval = optFlags.ProgressInterval })
	set("mnemonics", func() { opts.Mnemonics = optFlags.Mnemonics })
	set("no-prefilter", func() { opts.NoPrefilter = optFlags.NoPrefilter })
	set("batch-size", func() { opts.BatchSize = optFlags.BatchSize })
	set("population-size", func() { opts.PopulationSize = optFlags.PopulationSize })
	set("mutation-rate", func() { opts.MutationRate = optFlags.MutationRate })
	set("stagnation-limit", func() { opts.StagnationLimit = optFlags.StagnationLimit })

	opts.Logger = log
	opts.Progress = os.Stderr
	opts.Live = isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	return opts, nil
}

func archiveConfig(config *superopt.ToolConfig) *superopt.ArchiveConfig {
	archive := config.Archive
	if optArchive != "" {
		archive.Path, archive.Name = filepath.Split(optArchive)
		if archive.Path == "" {
			archive.Path = "."
		}
	}
	return &archive
}

func serveMetrics(addr string, m *superopt.Metrics) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("Metrics server failed")
		}
	}()
	log.WithField("addr", addr).Info("Serving metrics")
	return srv
}

func optimizeProgram(cmd *cobra.Command, args []string) error {
	strategy, err := superopt.ParseStrategy(optStrategy)
	if err != nil {
		return err
	}
	config, err := loadToolConfig()
	if err != nil {
		return err
	}
	opts, err := searchOptions(cmd, config)
	if err != nil {
		return err
	}

	input, err := readProgram(argPath(args), optFormat)
	if err != nil {
		return err
	}

	if optMetricsAddr != "" {
		opts.Metrics = superopt.NewMetrics()
		srv := serveMetrics(optMetricsAddr, opts.Metrics)
		defer srv.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := superopt.Optimize(ctx, input, strategy, opts)
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"input_instructions":  len(result.Input),
		"output_instructions": len(result.Program),
		"evaluated":           result.Evaluated,
		"cancelled":           result.Cancelled,
	}).Info("Optimization finished")
	if err := writeProgram(cmd.OutOrStdout(), result.Program, optFormat); err != nil {
		return err
	}

	if optArchive == "" && config.Archive.Name == "" {
		return nil
	}
	archive, err := superopt.NewArchive(archiveConfig(config))
	if err != nil {
		return err
	}
	defer archive.Close()
	id, err := archive.Record(result)
	if err != nil {
		return fmt.Errorf("unable to archive run: %w", err)
	}
	log.WithField("run", id).Debug("Archived run")
	return nil
}
