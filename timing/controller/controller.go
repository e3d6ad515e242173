// Package controller implements the five-stage pipeline's per-cycle driver:
// stage orchestration, stall/flush handling, branch-misprediction recovery,
// deadlock detection, and checker co-simulation. The functional semantics
// of each instruction, the ELF-backed memory, and the reference checker
// are all external collaborators from package funcmodel.
package controller

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/rs/xid"

	"github.com/sarchlab/perfmips/funcmodel"
	"github.com/sarchlab/perfmips/internal/logsink"
	"github.com/sarchlab/perfmips/timing/cycle"
	"github.com/sarchlab/perfmips/timing/port"
	"github.com/sarchlab/perfmips/timing/predictor"
	"github.com/sarchlab/perfmips/timing/regfile"
)

// deadlockThreshold is the number of writeback-less cycles that declares
// the pipeline stuck.
const deadlockThreshold cycle.Latency = 10

// Config selects the branch predictor variant the controller wires at
// construction.
type Config struct {
	BPMode string
	BPSize uint32
	BPWays uint32
}

// DefaultConfig matches the original simulator's defaults.
func DefaultConfig() Config {
	return Config{BPMode: predictor.ModeDynamicTwoBit, BPSize: 128, BPWays: 16}
}

// Controller owns the port registry, the predictor, the register file, and
// the per-cycle stage methods. One Controller runs exactly one simulation;
// Run may not be called twice on the same instance.
type Controller struct {
	*ports

	reg *port.Registry
	bp  predictor.Predictor
	rf  *regfile.RegisterFile
	sink logsink.Sink

	mem *funcmodel.MIPSMemory
	chk *funcmodel.Checker

	fetchPC cycle.Addr
	nextPC  cycle.Addr
	cyc     cycle.Cycle

	executedInstrs     uint64
	lastWritebackCycle cycle.Cycle

	runID string
}

// New builds a controller with its port fabric, predictor, and register
// file wired and validated. Memory and the checker are installed later, by
// Run, once a trace is known.
func New(cfg Config, sink logsink.Sink) (*Controller, error) {
	reg := port.NewRegistry()

	p, err := wirePorts(reg)
	if err != nil {
		return nil, fmt.Errorf("controller: wire ports: %w", err)
	}

	bp, err := predictor.New(predictor.Config{Mode: cfg.BPMode, Size: cfg.BPSize, Ways: cfg.BPWays})
	if err != nil {
		return nil, fmt.Errorf("controller: build predictor: %w", err)
	}

	return &Controller{
		ports: p,
		reg:   reg,
		bp:    bp,
		rf:    regfile.New(),
		sink:  sink,
		runID: xid.New().String(),
	}, nil
}

// ExecutedInstrs reports how many instructions have retired so far.
func (c *Controller) ExecutedInstrs() uint64 { return c.executedInstrs }

// Run loads tracePath as the program under test, re-initializes the
// checker from the same trace, and drives the pipeline until
// instrsToRun instructions have retired or a fatal condition (trap,
// checker mismatch, deadlock, or port protocol violation) terminates it.
func (c *Controller) Run(tracePath string, instrsToRun uint64) error {
	if instrsToRun >= 1<<32 {
		return fmt.Errorf("controller: instrs_to_run must be < 2^32, got %d", instrsToRun)
	}

	mem := funcmodel.NewMIPSMemory()
	if err := mem.LoadELF(tracePath); err != nil {
		return fmt.Errorf("controller: %w", err)
	}
	c.mem = mem

	chk := funcmodel.NewChecker()
	if err := chk.Init(tracePath); err != nil {
		return fmt.Errorf("controller: %w", err)
	}
	c.chk = chk

	c.nextPC = mem.StartPC()
	c.cyc = 0

	start := time.Now()

	for c.executedInstrs < instrsToRun {
		if err := c.clockWriteback(); err != nil {
			return err
		}
		if err := c.clockFetch(); err != nil {
			return err
		}
		if err := c.clockDecode(); err != nil {
			return err
		}
		if err := c.clockExecute(); err != nil {
			return err
		}
		if err := c.clockMemory(); err != nil {
			return err
		}

		c.cyc = c.cyc.Inc()

		if err := port.CheckPorts(c.reg, c.cyc); err != nil {
			return fmt.Errorf("controller: %w", err)
		}
	}

	c.sink.Logf("%s\n", c.summary(time.Since(start)))
	return nil
}

func (c *Controller) clockFetch() error {
	var isFlush, isStall bool
	if c.rpFetchFlush.IsReady(c.cyc) {
		isFlush = c.rpFetchFlush.Read(c.cyc)
	}
	if c.rpDecode2FetchStall.IsReady(c.cyc) {
		isStall = c.rpDecode2FetchStall.Read(c.cyc)
	}

	switch {
	case isFlush:
		c.fetchPC = c.rpMemory2FetchTarget.Read(c.cyc)
	case !isStall:
		c.fetchPC = c.nextPC
	}

	raw := c.mem.Fetch(c.fetchPC)
	predictedTaken := c.bp.IsTaken(c.fetchPC)
	predictedTarget := c.bp.GetTarget(c.fetchPC)
	c.nextPC = predictedTarget

	data := ifIdData{raw: raw, pc: c.fetchPC, predictedTaken: predictedTaken, predictedTarget: predictedTarget}
	if err := c.wpFetch2Decode.Write(data, c.cyc); err != nil {
		return err
	}

	c.sink.Logf("fetch   cycle %d: %s: 0x%08x\n", uint64(c.cyc), c.fetchPC, raw)
	return nil
}

func (c *Controller) clockDecode() error {
	var isFlush bool
	if c.rpDecodeFlush.IsReady(c.cyc) {
		isFlush = c.rpDecodeFlush.Read(c.cyc)
	}

	if isFlush {
		c.rpFetch2Decode.Ignore(c.cyc)
		c.rpDecode2Decode.Ignore(c.cyc)
		c.sink.Logf("decode  cycle %d: flush\n", uint64(c.cyc))
		return nil
	}

	fetchReady := c.rpFetch2Decode.IsReady(c.cyc)
	selfReady := c.rpDecode2Decode.IsReady(c.cyc)
	if !fetchReady && !selfReady {
		c.sink.Logf("decode  cycle %d: bubble\n", uint64(c.cyc))
		return nil
	}

	var instr funcmodel.FuncInstr
	if selfReady {
		c.rpFetch2Decode.Ignore(c.cyc)
		instr = c.rpDecode2Decode.Read(c.cyc)
	} else {
		data := c.rpFetch2Decode.Read(c.cyc)
		instr = funcmodel.NewFuncInstr(data.raw, data.pc, data.predictedTaken, data.predictedTarget)
	}

	if c.rf.CheckSources(&instr) {
		c.rf.ReadSources(&instr)
		if err := c.wpDecode2Execute.Write(instr, c.cyc); err != nil {
			return err
		}
		c.sink.Logf("decode  cycle %d: %s\n", uint64(c.cyc), instr.Dump())
		return nil
	}

	if err := c.wpDecode2FetchStall.Write(true, c.cyc); err != nil {
		return err
	}
	if err := c.wpDecode2Decode.Write(instr, c.cyc); err != nil {
		return err
	}
	c.sink.Logf("decode  cycle %d: %s (data hazard)\n", uint64(c.cyc), instr.Dump())
	return nil
}

func (c *Controller) clockExecute() error {
	var isFlush bool
	if c.rpExecuteFlush.IsReady(c.cyc) {
		isFlush = c.rpExecuteFlush.Read(c.cyc)
	}

	if isFlush {
		if c.rpDecode2Execute.IsReady(c.cyc) {
			instr := c.rpDecode2Execute.Read(c.cyc)
			c.rf.Cancel(&instr)
		}
		c.sink.Logf("execute cycle %d: flush\n", uint64(c.cyc))
		return nil
	}

	if !c.rpDecode2Execute.IsReady(c.cyc) {
		c.sink.Logf("execute cycle %d: bubble\n", uint64(c.cyc))
		return nil
	}

	instr := c.rpDecode2Execute.Read(c.cyc)
	instr.Execute()

	if err := c.wpExecute2Memory.Write(instr, c.cyc); err != nil {
		return err
	}
	c.sink.Logf("execute cycle %d: %s\n", uint64(c.cyc), instr.Dump())
	return nil
}

func (c *Controller) clockMemory() error {
	var isFlush bool
	if c.rpMemoryFlush.IsReady(c.cyc) {
		isFlush = c.rpMemoryFlush.Read(c.cyc)
	}

	if isFlush {
		if c.rpExecute2Memory.IsReady(c.cyc) {
			instr := c.rpExecute2Memory.Read(c.cyc)
			c.rf.Cancel(&instr)
		}
		c.sink.Logf("memory  cycle %d: flush\n", uint64(c.cyc))
		return nil
	}

	if !c.rpExecute2Memory.IsReady(c.cyc) {
		c.sink.Logf("memory  cycle %d: bubble\n", uint64(c.cyc))
		return nil
	}

	instr := c.rpExecute2Memory.Read(c.cyc)

	mispredicted := false
	if instr.IsJump() {
		actualTaken := instr.IsJumpTaken()
		realTarget := instr.GetNewPC()
		c.bp.Update(actualTaken, instr.GetPC(), realTarget)

		if instr.IsMisprediction() {
			mispredicted = true
			if err := c.wpMemory2AllFlush.Write(true, c.cyc); err != nil {
				return err
			}
			if err := c.wpMemory2FetchTarget.Write(realTarget, c.cyc); err != nil {
				return err
			}
		}
	}

	instr.LoadStore(c.mem)

	if err := c.wpMemory2Writeback.Write(instr, c.cyc); err != nil {
		return err
	}

	if mispredicted {
		c.sink.Logf("memory  cycle %d: misprediction on %s\n", uint64(c.cyc), instr.Dump())
	} else {
		c.sink.Logf("memory  cycle %d: %s\n", uint64(c.cyc), instr.Dump())
	}
	return nil
}

func (c *Controller) clockWriteback() error {
	if !c.rpMemory2Writeback.IsReady(c.cyc) {
		c.sink.Logf("wb      cycle %d: bubble\n", uint64(c.cyc))
		if c.cyc >= c.lastWritebackCycle.Add(deadlockThreshold) {
			return fmt.Errorf("controller: deadlock detected — no retirement since cycle %s (now %s)", c.lastWritebackCycle, c.cyc)
		}
		return nil
	}

	instr := c.rpMemory2Writeback.Read(c.cyc)

	c.rf.WriteDst(&instr)

	if instr.CheckTrap() {
		return fmt.Errorf("controller: trap at %s: %s", instr.GetPC(), instr.Dump())
	}

	c.sink.Logf("wb      cycle %d: %s\n", uint64(c.cyc), instr.Dump())

	ref := c.chk.Step()
	if ref.Dump() != instr.Dump() {
		return fmt.Errorf("controller: checker mismatch at %s: got %q want %q", instr.GetPC(), instr.Dump(), ref.Dump())
	}

	c.executedInstrs++
	c.lastWritebackCycle = c.cyc
	return nil
}

func (c *Controller) summary(elapsed time.Duration) string {
	cycles := float64(uint64(c.cyc))
	ipc := float64(c.executedInstrs) / cycles
	seconds := elapsed.Seconds()

	var freqKHz, simIPS float64
	if seconds > 0 {
		freqKHz = cycles / seconds / 1000
		simIPS = float64(c.executedInstrs) / seconds / 1000
	}

	return fmt.Sprintf(
		"\n****************************\n"+
			"run:        %s\n"+
			"instrs:     %d\n"+
			"cycles:     %d\n"+
			"IPC:        %.4f\n"+
			"sim freq:   %.2f kHz\n"+
			"sim IPS:    %.2f kips\n"+
			"instr size: %d bytes\n"+
			"****************************",
		c.runID, c.executedInstrs, uint64(c.cyc), ipc, freqKHz, simIPS, unsafe.Sizeof(funcmodel.FuncInstr{}))
}
