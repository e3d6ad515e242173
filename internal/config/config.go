// Package config implements the simulator's command-line options
// registry: flag registration, help text, and the required/optional
// value handling the original simulator's Boost options parser provided.
package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/perfmips/timing/predictor"
)

// Options holds the fully parsed command line, ready to hand to
// timing/controller.
type Options struct {
	TracePath   string
	InstrsToRun uint64
	BPMode      string
	BPSize      uint32
	BPWays      uint32

	// HelpRequested is set when --help was passed; the caller should
	// print nothing further and exit 0 without running a simulation.
	HelpRequested bool
}

// Parse builds the option registry, parses args against it, and returns
// the resolved Options. A missing required trace path, an unknown flag,
// or an out-of-range value is returned as a non-nil error; --help
// produces a zero-error Options with HelpRequested set.
func Parse(args []string) (Options, error) {
	var opts Options
	ran := false

	cmd := &cobra.Command{
		Use:   "perfmips <trace.elf>",
		Short: "Cycle-accurate 5-stage in-order MIPS32 pipeline simulator",
		Long: "perfmips runs a MIPS32 ELF binary through a cycle-accurate, " +
			"5-stage in-order pipeline model with pluggable branch " +
			"prediction, checking every retired instruction against an " +
			"independent functional model.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			ran = true
			opts.TracePath = cmdArgs[0]
			return nil
		},
	}

	cmd.Flags().Uint64Var(&opts.InstrsToRun, "instrs", 0,
		"number of instructions to retire before stopping (required)")
	cmd.Flags().StringVar(&opts.BPMode, "bp-mode", predictor.ModeDynamicTwoBit,
		fmt.Sprintf("branch predictor variant: %s, %s, %s, or %s",
			predictor.ModeAlwaysTaken, predictor.ModeAlwaysNotTaken,
			predictor.ModeStaticBackward, predictor.ModeDynamicTwoBit))
	cmd.Flags().Uint32Var(&opts.BPSize, "bp-size", 128,
		"branch target buffer size, entries (dynamic_two_bit only)")
	cmd.Flags().Uint32Var(&opts.BPWays, "bp-ways", 16,
		"branch target buffer associativity, ways (dynamic_two_bit only)")

	if err := cmd.MarkFlagRequired("instrs"); err != nil {
		return Options{}, fmt.Errorf("config: %w", err)
	}

	cmd.SetArgs(args)

	if err := cmd.Execute(); err != nil {
		return Options{}, fmt.Errorf("config: %w", err)
	}

	if !ran {
		return Options{HelpRequested: true}, nil
	}

	return opts, nil
}
