package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"nickandperla.net/superopt/machine"
)

var (
	runFormat     programFormat
	runStepBudget uint

	runCmd = &cobra.Command{
		Use:   "run [file|-]",
		Short: "Execute a program and print the final machine state",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runProgram,
	}
)

func init() {
	runFormat.register(runCmd, true)
	runCmd.Flags().UintVar(&runStepBudget, "step-budget", machine.DefaultStepBudget, "Maximum executed instructions")
}

func runProgram(cmd *cobra.Command, args []string) error {
	p, err := readProgram(argPath(args), runFormat)
	if err != nil {
		return err
	}

	m := machine.NewMachine(machine.Config{StepBudget: runStepBudget})
	runErr := m.Run(p)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "state:  %v\n", m.State)
	if len(m.Output) > 0 {
		fmt.Fprintf(out, "output: %v\n", m.Output)
	}
	fmt.Fprintf(out, "steps:  %d\n", m.Steps)
	if runErr != nil {
		return fmt.Errorf("program faulted at pc [%d]: %w", m.PC, runErr)
	}
	return nil
}
