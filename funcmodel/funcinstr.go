package funcmodel

import (
	"fmt"

	"github.com/sarchlab/perfmips/timing/cycle"
)

// Memory is the byte-addressed memory the functional model reads
// instructions from and performs loads/stores against. MIPSMemory is the
// concrete ELF-backed implementation; the funcmodel tests substitute
// mocks.MockMemory.
type Memory interface {
	Fetch(pc cycle.Addr) uint32
	ReadByte(addr cycle.Addr) uint8
	ReadHalf(addr cycle.Addr) uint16
	ReadWord(addr cycle.Addr) uint32
	WriteByte(addr cycle.Addr, v uint8)
	WriteHalf(addr cycle.Addr, v uint16)
	WriteWord(addr cycle.Addr, v uint32)
	StartPC() cycle.Addr
}

// FuncInstr is the value the pipeline carries through its ports: the
// statically decoded instruction plus everything that accumulates as it
// moves through decode, execute, and memory. It is a plain value type,
// freely copyable, as spec.md requires.
type FuncInstr struct {
	in instruction

	pc              cycle.Addr
	predictedTaken  bool
	predictedTarget cycle.Addr

	rsVal, rtVal uint32

	aluResult   uint32
	branchTaken bool
	newPC       cycle.Addr
	executed    bool

	memData uint32
	trapped bool
}

// NewFuncInstr decodes raw at pc, carrying the fetch-time branch prediction
// annotation the pipeline attached.
func NewFuncInstr(raw uint32, pc cycle.Addr, predictedTaken bool, predictedTarget cycle.Addr) FuncInstr {
	return FuncInstr{
		in:              decode(raw),
		pc:              pc,
		predictedTaken:  predictedTaken,
		predictedTarget: predictedTarget,
		newPC:           pc.Next(),
	}
}

// GetPC returns the instruction's own PC.
func (fi *FuncInstr) GetPC() cycle.Addr { return fi.pc }

// GetNewPC returns the PC execute() computed: pc+4 for non-control-flow
// instructions, the resolved branch/jump target otherwise.
func (fi *FuncInstr) GetNewPC() cycle.Addr { return fi.newPC }

// IsJump reports whether this instruction is any control-flow instruction
// (conditional branch or unconditional jump).
func (fi *FuncInstr) IsJump() bool { return fi.in.isJump() }

// IsJumpTaken reports the actually-resolved taken/not-taken outcome.
// Unconditional jumps are always taken.
func (fi *FuncInstr) IsJumpTaken() bool { return fi.branchTaken }

// IsMisprediction reports whether the fetch-time prediction diverges from
// the outcome resolved at execute: predicted-taken != actual-taken, or
// (predicted-taken and predicted-target != actual-target).
func (fi *FuncInstr) IsMisprediction() bool {
	if fi.predictedTaken != fi.branchTaken {
		return true
	}
	if fi.predictedTaken && fi.predictedTarget != fi.newPC {
		return true
	}
	return false
}

// PredictedTaken returns the fetch-time prediction.
func (fi *FuncInstr) PredictedTaken() bool { return fi.predictedTaken }

// PredictedTarget returns the fetch-time predicted target.
func (fi *FuncInstr) PredictedTarget() cycle.Addr { return fi.predictedTarget }

// RsReg and RtReg expose the raw source register fields so the register
// file can look up and populate operand values without depending on the
// decoded instruction shape.
func (fi *FuncInstr) RsReg() uint8 { return fi.in.rs }

// RtReg is the second raw source/target register field.
func (fi *FuncInstr) RtReg() uint8 { return fi.in.rt }

// SourceRegs returns the architectural registers this instruction reads.
func (fi *FuncInstr) SourceRegs() []uint8 { return fi.in.sourceRegs() }

// HasDest reports whether this instruction writes an architectural
// register.
func (fi *FuncInstr) HasDest() bool { return fi.in.hasDest }

// DestReg returns the destination register id; valid only if HasDest().
func (fi *FuncInstr) DestReg() uint8 { return fi.in.dest }

// SetSourceValues is called by the register file during read_sources to
// populate the operand values execute() will consume.
func (fi *FuncInstr) SetSourceValues(rsVal, rtVal uint32) {
	fi.rsVal = rsVal
	fi.rtVal = rtVal
}

// ResultValue returns the value write_dst should commit to DestReg(): the
// ALU result for arithmetic/logical/link instructions, the loaded value for
// loads.
func (fi *FuncInstr) ResultValue() uint32 {
	if fi.in.isLoad() {
		return fi.memData
	}
	return fi.aluResult
}

// Execute performs the instruction's functional-model effect: ALU
// computation, effective-address calculation for loads/stores, or
// branch/jump resolution. It must run before LoadStore and before any
// query of GetNewPC/IsJumpTaken is meaningful.
func (fi *FuncInstr) Execute() {
	fi.executed = true
	fi.newPC = fi.pc.Next()

	switch fi.in.op {
	case OpADD:
		fi.aluResult, fi.trapped = addOverflowChecked(fi.rsVal, fi.rtVal)
	case OpADDU:
		fi.aluResult = fi.rsVal + fi.rtVal
	case OpSUB:
		fi.aluResult, fi.trapped = addOverflowChecked(fi.rsVal, ^fi.rtVal+1)
	case OpSUBU:
		fi.aluResult = fi.rsVal - fi.rtVal
	case OpAND:
		fi.aluResult = fi.rsVal & fi.rtVal
	case OpOR:
		fi.aluResult = fi.rsVal | fi.rtVal
	case OpXOR:
		fi.aluResult = fi.rsVal ^ fi.rtVal
	case OpNOR:
		fi.aluResult = ^(fi.rsVal | fi.rtVal)
	case OpSLT:
		fi.aluResult = boolToWord(int32(fi.rsVal) < int32(fi.rtVal))
	case OpSLTU:
		fi.aluResult = boolToWord(fi.rsVal < fi.rtVal)
	case OpSLL:
		fi.aluResult = fi.rtVal << fi.in.shamt
	case OpSRL:
		fi.aluResult = fi.rtVal >> fi.in.shamt
	case OpSRA:
		fi.aluResult = uint32(int32(fi.rtVal) >> fi.in.shamt)
	case OpJR:
		fi.branchTaken = true
		fi.newPC = cycle.Addr(fi.rsVal)
	case OpJALR:
		fi.branchTaken = true
		fi.newPC = cycle.Addr(fi.rsVal)
		fi.aluResult = uint32(fi.pc.Next())
	case OpSYSCALL:
		fi.trapped = true

	case OpADDI:
		fi.aluResult, fi.trapped = addOverflowChecked(fi.rsVal, uint32(fi.in.imm))
	case OpADDIU:
		fi.aluResult = fi.rsVal + uint32(fi.in.imm)
	case OpANDI:
		fi.aluResult = fi.rsVal & fi.in.immZeroExt()
	case OpORI:
		fi.aluResult = fi.rsVal | fi.in.immZeroExt()
	case OpXORI:
		fi.aluResult = fi.rsVal ^ fi.in.immZeroExt()
	case OpLUI:
		fi.aluResult = fi.in.immZeroExt() << 16
	case OpSLTI:
		fi.aluResult = boolToWord(int32(fi.rsVal) < fi.in.imm)
	case OpSLTIU:
		fi.aluResult = boolToWord(fi.rsVal < uint32(fi.in.imm))

	case OpBEQ:
		fi.branchTaken = fi.rsVal == fi.rtVal
	case OpBNE:
		fi.branchTaken = fi.rsVal != fi.rtVal
	case OpBLEZ:
		fi.branchTaken = int32(fi.rsVal) <= 0
	case OpBGTZ:
		fi.branchTaken = int32(fi.rsVal) > 0

	case OpJ:
		fi.branchTaken = true
		fi.newPC = fi.jumpTarget()
	case OpJAL:
		fi.branchTaken = true
		fi.newPC = fi.jumpTarget()
		fi.aluResult = uint32(fi.pc.Next())

	case OpLW, OpLB, OpLBU, OpLH, OpLHU:
		fi.aluResult = fi.rsVal + uint32(fi.in.imm) // effective address
	case OpSW, OpSB, OpSH:
		fi.aluResult = fi.rsVal + uint32(fi.in.imm) // effective address
	}

	if fi.in.isBranch() && fi.branchTaken {
		fi.newPC = fi.branchTarget()
	}
}

func (fi *FuncInstr) branchTarget() cycle.Addr {
	return cycle.Addr(int64(fi.pc.Next()) + int64(fi.in.imm)*4)
}

func (fi *FuncInstr) jumpTarget() cycle.Addr {
	return cycle.Addr((uint32(fi.pc.Next()) & 0xf0000000) | (fi.in.target << 2))
}

// LoadStore performs the instruction's memory effect, if any, using the
// effective address Execute computed into the ALU result.
func (fi *FuncInstr) LoadStore(mem Memory) {
	addr := cycle.Addr(fi.aluResult)

	switch fi.in.op {
	case OpLW:
		fi.memData = mem.ReadWord(addr)
	case OpLB:
		fi.memData = uint32(int32(int8(mem.ReadByte(addr))))
	case OpLBU:
		fi.memData = uint32(mem.ReadByte(addr))
	case OpLH:
		fi.memData = uint32(int32(int16(mem.ReadHalf(addr))))
	case OpLHU:
		fi.memData = uint32(mem.ReadHalf(addr))
	case OpSW:
		mem.WriteWord(addr, fi.rtVal)
	case OpSB:
		mem.WriteByte(addr, uint8(fi.rtVal))
	case OpSH:
		mem.WriteHalf(addr, uint16(fi.rtVal))
	}
}

// CheckTrap reports whether this instruction raised an architectural trap
// (a syscall, or signed-arithmetic overflow on ADD/ADDI/SUB).
func (fi *FuncInstr) CheckTrap() bool { return fi.trapped }

// Dump renders the instruction the way the original simulator's Dump()
// does: "<PC>: <mnemonic> <operands>\t [ <effect>]", with the bracket
// omitted for instructions with no architecturally visible effect.
func (fi *FuncInstr) Dump() string {
	op := fi.in
	head := fmt.Sprintf("%s: %s", fi.pc, op.mnemonic())

	switch {
	case op.op == OpLUI:
		return fmt.Sprintf("%s %s, 0x%x\t [ %s = 0x%x]", head, regNames[op.dest], op.immZeroExt(), regNames[op.dest], fi.resultIfExecuted())

	case op.format == FormatR && op.hasDest && (op.op == OpSLL || op.op == OpSRL || op.op == OpSRA):
		return fmt.Sprintf("%s %s, %s, %d\t [ %s = 0x%x]", head, regNames[op.dest], regNames[op.rt], op.shamt, regNames[op.dest], fi.resultIfExecuted())

	case op.format == FormatR && op.hasDest && op.op != OpJALR:
		return fmt.Sprintf("%s %s, %s, %s\t [ %s = 0x%x]", head, regNames[op.dest], regNames[op.rs], regNames[op.rt], regNames[op.dest], fi.resultIfExecuted())

	case op.op == OpJALR:
		return fmt.Sprintf("%s %s, %s\t [ %s = 0x%x, PC = %s]", head, regNames[op.dest], regNames[op.rs], regNames[op.dest], fi.resultIfExecuted(), fi.newPC)

	case op.op == OpJR:
		return fmt.Sprintf("%s %s\t [ PC = %s]", head, regNames[op.rs], fi.newPC)

	case op.isLoad():
		return fmt.Sprintf("%s %s, %d(%s)\t [ %s = 0x%x]", head, regNames[op.dest], op.imm, regNames[op.rs], regNames[op.dest], fi.resultIfExecuted())

	case op.isStore():
		return fmt.Sprintf("%s %s, %d(%s)\t [ mem 0x%x = 0x%x]", head, regNames[op.rt], op.imm, regNames[op.rs], fi.aluResult, fi.rtVal)

	case op.op == OpBEQ || op.op == OpBNE:
		return fmt.Sprintf("%s %s, %s, %s%s", head, regNames[op.rs], regNames[op.rt], fi.newPC, fi.takenSuffix())

	case op.op == OpBLEZ || op.op == OpBGTZ:
		return fmt.Sprintf("%s %s, %s%s", head, regNames[op.rs], fi.newPC, fi.takenSuffix())

	case op.op == OpJ:
		return fmt.Sprintf("%s %s\t [ PC = %s]", head, fi.newPC, fi.newPC)

	case op.op == OpJAL:
		return fmt.Sprintf("%s %s\t [ $ra = 0x%x, PC = %s]", head, fi.newPC, fi.resultIfExecuted(), fi.newPC)

	case op.format == FormatI && op.hasDest:
		return fmt.Sprintf("%s %s, %s, %d\t [ %s = 0x%x]", head, regNames[op.dest], regNames[op.rs], op.imm, regNames[op.dest], fi.resultIfExecuted())

	default:
		return head
	}
}

func (fi *FuncInstr) resultIfExecuted() uint32 {
	if !fi.executed {
		return 0
	}
	return fi.ResultValue()
}

func (fi *FuncInstr) takenSuffix() string {
	if fi.branchTaken {
		return "\t [ branch taken]"
	}
	return ""
}

func (in instruction) immZeroExt() uint32 {
	return uint32(uint16(in.raw))
}

func boolToWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func addOverflowChecked(a, b uint32) (uint32, bool) {
	sum := a + b
	signA := a>>31 == 1
	signB := b>>31 == 1
	signSum := sum>>31 == 1
	overflow := signA == signB && signSum != signA
	return sum, overflow
}
