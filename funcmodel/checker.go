package funcmodel

import (
	"fmt"

	"github.com/sarchlab/perfmips/timing/cycle"
)

// Checker is an independent, unpipelined re-simulation of the same program
// the timed pipeline is running. The controller steps it once per retired
// instruction and compares its Dump() against the retiring instruction's
// Dump(); any divergence means the pipeline's functional effect deviated
// from a correct in-order execution.
type Checker struct {
	mem *MIPSMemory
	reg [32]uint32
	pc  cycle.Addr
}

// NewChecker constructs an unitialized checker; call Init before Step.
func NewChecker() *Checker {
	return &Checker{}
}

// Init loads the same ELF binary the timed run is executing and resets the
// checker's architectural state to the program's entry point.
func (c *Checker) Init(path string) error {
	mem := NewMIPSMemory()
	if err := mem.LoadELF(path); err != nil {
		return fmt.Errorf("funcmodel: checker init: %w", err)
	}

	c.mem = mem
	c.reg = [32]uint32{}
	c.reg[29] = uint32(DefaultStackTop)
	c.pc = mem.StartPC()
	return nil
}

// Step executes exactly one instruction against the checker's own memory
// and register state and returns it, fully resolved, for comparison.
func (c *Checker) Step() FuncInstr {
	raw := c.mem.Fetch(c.pc)
	instr := NewFuncInstr(raw, c.pc, false, c.pc.Next())

	instr.SetSourceValues(c.readReg(instr.RsReg()), c.readReg(instr.RtReg()))

	instr.Execute()
	instr.LoadStore(c.mem)

	if instr.HasDest() {
		c.writeReg(instr.DestReg(), instr.ResultValue())
	}

	c.pc = instr.GetNewPC()
	return instr
}

func (c *Checker) readReg(r uint8) uint32 {
	if r == 0 {
		return 0
	}
	return c.reg[r]
}

func (c *Checker) writeReg(r uint8, v uint32) {
	if r == 0 {
		return
	}
	c.reg[r] = v
}
