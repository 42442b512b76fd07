package main

import (
	"errors"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"nickandperla.net/superopt"
	"nickandperla.net/superopt/machine"
)

var (
	genMinInstructions int
	genMaxInstructions int
	genMinImm          uint8
	genMaxImm          uint8
	genExclude         []string
	genSeed            int64
	genFormat          programFormat

	genCmd = &cobra.Command{
		Use:   "gen",
		Short: "Generate a random program",
		Args:  cobra.NoArgs,
		RunE:  generateProgram,
	}
)

func init() {
	genCmd.Flags().IntVar(&genMinInstructions, "min-instructions", 0, "Minimum program length")
	genCmd.Flags().IntVar(&genMaxInstructions, "max-instructions", 10, "Maximum program length")
	genCmd.Flags().Uint8Var(&genMinImm, "min-imm", 1, "Smallest LOAD immediate")
	genCmd.Flags().Uint8Var(&genMaxImm, "max-imm", machine.MaxImmediate, "Largest LOAD immediate")
	genCmd.Flags().StringSliceVar(&genExclude, "exclude", nil, "Mnemonics to leave out")
	genCmd.Flags().Int64Var(&genSeed, "seed", 0, "Random seed, 0 for time based")
	genFormat.register(genCmd, false)
}

func generateProgram(cmd *cobra.Command, args []string) error {
	if genMinInstructions < 0 || genMaxInstructions < genMinInstructions {
		return errors.New("instruction range is empty")
	}
	if genMinImm > genMaxImm {
		return errors.New("immediate range is empty")
	}
	ops, err := superopt.ExcludeMnemonics(genExclude)
	if err != nil {
		return err
	}

	seed := genSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	r := rand.New(rand.NewSource(seed))
	gen := superopt.NewGenerator(ops, genMinImm, genMaxImm, r)
	p := gen.Program(genMinInstructions + r.Intn(genMaxInstructions-genMinInstructions+1))

	log.WithField("seed", seed).WithField("length", len(p)).Debug("Generated program")
	return writeProgram(cmd.OutOrStdout(), p, genFormat)
}
