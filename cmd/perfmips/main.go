// Command perfmips runs a MIPS32 ELF binary through the cycle-accurate
// 5-stage pipeline model and reports a run summary on success.
package main

import (
	"fmt"
	"os"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/perfmips/internal/config"
	"github.com/sarchlab/perfmips/internal/logsink"
	"github.com/sarchlab/perfmips/timing/controller"
)

func main() {
	opts, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}
	if opts.HelpRequested {
		atexit.Exit(0)
	}

	sink := logsink.New(os.Stdout, os.Stderr)
	atexit.Register(func() {
		if f, ok := sink.Err.(*os.File); ok {
			_ = f.Sync()
		}
	})

	ctrl, err := controller.New(controller.Config{
		BPMode: opts.BPMode,
		BPSize: opts.BPSize,
		BPWays: opts.BPWays,
	}, sink)
	if err != nil {
		sink.Errorf("%v", err)
		atexit.Exit(1)
	}

	if err := ctrl.Run(opts.TracePath, opts.InstrsToRun); err != nil {
		sink.Errorf("%v", err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
