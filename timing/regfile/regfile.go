// Package regfile implements the architectural register file and its
// decode-time hazard protocol. Unlike the teacher's HazardUnit, which
// forwards values between EX/MEM and MEM/WB latches, this register file
// stalls: an instruction whose sources are still in flight retries decode
// next cycle rather than receiving a bypassed value. There is no
// forwarding unit.
package regfile

import "github.com/sarchlab/perfmips/funcmodel"

// RegisterFile holds the 32 architectural registers plus an in-flight bit
// per register, set while some decoded-but-not-yet-retired instruction is
// due to write it.
type RegisterFile struct {
	arch     [32]uint32
	inFlight [32]bool
}

// New returns a register file with no reservations outstanding and $sp
// seeded to the same initial stack pointer the checker uses, so both
// co-simulated architectural states start identically.
func New() *RegisterFile {
	rf := &RegisterFile{}
	rf.arch[29] = uint32(funcmodel.DefaultStackTop)
	return rf
}

// CheckSources reports whether every source register instr reads, and its
// own destination register if it has one, is free of an outstanding
// reservation. Checking the destination too (not just the sources) closes
// a write-after-write hazard: without it, a second in-flight writer to the
// same register could have its reservation cleared by the first writer's
// retirement while it is itself still pending, letting a later reader see
// a stale value. $zero is always available.
func (rf *RegisterFile) CheckSources(instr *funcmodel.FuncInstr) bool {
	for _, r := range instr.SourceRegs() {
		if r != 0 && rf.inFlight[r] {
			return false
		}
	}
	if instr.HasDest() && instr.DestReg() != 0 && rf.inFlight[instr.DestReg()] {
		return false
	}
	return true
}

// ReadSources populates instr's operand values from the current
// architectural state and, if instr writes a register, reserves it: the
// register stays in flight until WriteDst or Cancel releases it. Callers
// must have confirmed CheckSources first.
func (rf *RegisterFile) ReadSources(instr *funcmodel.FuncInstr) {
	instr.SetSourceValues(rf.read(instr.RsReg()), rf.read(instr.RtReg()))

	if instr.HasDest() && instr.DestReg() != 0 {
		rf.inFlight[instr.DestReg()] = true
	}
}

// WriteDst commits instr's result to its destination register and releases
// the reservation ReadSources placed on it.
func (rf *RegisterFile) WriteDst(instr *funcmodel.FuncInstr) {
	if !instr.HasDest() || instr.DestReg() == 0 {
		return
	}
	rf.arch[instr.DestReg()] = instr.ResultValue()
	rf.inFlight[instr.DestReg()] = false
}

// Cancel releases instr's destination reservation without committing a
// value, used when a flushed in-flight instruction is discarded.
func (rf *RegisterFile) Cancel(instr *funcmodel.FuncInstr) {
	if !instr.HasDest() || instr.DestReg() == 0 {
		return
	}
	rf.inFlight[instr.DestReg()] = false
}

func (rf *RegisterFile) read(r uint8) uint32 {
	if r == 0 {
		return 0
	}
	return rf.arch[r]
}
