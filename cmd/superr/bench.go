package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"nickandperla.net/superopt"
	"nickandperla.net/superopt/machine"
)

var (
	benchBuffer   int
	benchWorkers  int
	benchDuration time.Duration
	benchSeed     int64

	benchCmd = &cobra.Command{
		Use:   "bench",
		Short: "Measure VM throughput on every worker until interrupted",
		Args:  cobra.NoArgs,
		RunE:  runBench,
	}
)

func init() {
	benchCmd.Flags().IntVar(&benchBuffer, "buffer", 512, "Instructions per generated program")
	benchCmd.Flags().IntVarP(&benchWorkers, "workers", "w", superopt.DefaultWorkers(), "Benchmark workers")
	benchCmd.Flags().DurationVar(&benchDuration, "duration", 0, "Stop after this long, 0 to run until interrupted")
	benchCmd.Flags().Int64Var(&benchSeed, "seed", 1, "Random seed")
}

func runBench(cmd *cobra.Command, args []string) error {
	if benchBuffer < 1 || benchWorkers < 1 {
		return fmt.Errorf("buffer [%d] and workers [%d] must be positive", benchBuffer, benchWorkers)
	}
	ops, err := superopt.ParseMnemonics(superopt.DefaultMnemonics)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if benchDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, benchDuration)
		defer cancel()
	}

	// straight-line programs execute every instruction once
	config := machine.DefaultConfig()
	config.StepBudget = max(config.StepBudget, uint(benchBuffer))

	var executed atomic.Uint64
	start := time.Now()
	ticker := &superopt.Ticker{
		Out:      os.Stderr,
		Interval: time.Second,
		Live:     isatty.IsTerminal(os.Stderr.Fd()),
		Noun:     "instructions",
		Count:    executed.Load,
		Elapsed:  func() time.Duration { return time.Since(start) },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ticker.Run(gctx.Done())
		return nil
	})
	for id := 0; id < benchWorkers; id++ {
		id := id
		g.Go(func() error {
			gen := superopt.NewGenerator(ops, 0, machine.MaxImmediate, rand.New(rand.NewSource(benchSeed+int64(id))))
			m := machine.NewMachine(config)
			buf := make(machine.Program, benchBuffer)
			for gctx.Err() == nil {
				if _, err := m.ComputeState(gen.Fill(buf)); err != nil {
					return fmt.Errorf("worker [%d]: %w", id, err)
				}
				executed.Add(uint64(m.Steps))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	elapsed := time.Since(start)
	total := executed.Load()
	fmt.Fprintf(cmd.OutOrStdout(), "%s instructions in %s, %s instructions/s\n",
		humanize.Comma(int64(total)), elapsed.Truncate(time.Millisecond),
		humanize.Comma(int64(float64(total)/elapsed.Seconds())))
	return nil
}
