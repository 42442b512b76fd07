package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"nickandperla.net/superopt/machine"
)

// programFormat selects how a command reads or writes programs: "text", or
// one of the binary layouts "word" and "compact".
type programFormat struct {
	name    string
	lenient bool
}

func (pf *programFormat) register(cmd *cobra.Command, reading bool) {
	cmd.Flags().StringVar(&pf.name, "format", "text", "Program format: text, word or compact")
	if reading {
		cmd.Flags().BoolVar(&pf.lenient, "lenient", false, "Skip malformed text lines instead of failing")
	}
}

// readProgram loads the program at path, or stdin for "" and "-".
func readProgram(path string, pf programFormat) (machine.Program, error) {
	var r io.Reader = os.Stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("unable to open program: %w", err)
		}
		defer f.Close()
		r = f
	}

	if pf.name == "" || pf.name == "text" {
		if !pf.lenient {
			return machine.ParseProgram(r)
		}
		p, skipped, err := machine.ParseProgramLenient(r)
		for _, s := range skipped {
			log.WithError(s).Warn("Skipped malformed line")
		}
		return p, err
	}

	format, err := machine.ParseFormat(pf.name)
	if err != nil {
		return nil, err
	}
	return machine.DecodeProgram(r, format)
}

func writeProgram(w io.Writer, p machine.Program, pf programFormat) error {
	if pf.name == "" || pf.name == "text" {
		return machine.WriteProgram(w, p)
	}
	format, err := machine.ParseFormat(pf.name)
	if err != nil {
		return err
	}
	return machine.EncodeProgram(w, p, format)
}

func argPath(args []string) string {
	if len(args) == 0 {
		return "-"
	}
	return args[0]
}
