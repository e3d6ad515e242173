// Package funcmodel provides the instruction-set functional semantics,
// ELF-backed byte-addressed memory, and reference checker that the pipeline
// core treats as external collaborators (spec.md §6). It implements a
// practical MIPS32 subset: R-type ALU ops, I-type ALU/load-immediate ops,
// loads/stores, and the control-flow instructions needed to exercise the
// pipeline's branch-prediction and misprediction-recovery machinery.
package funcmodel

import "fmt"

// Op identifies a decoded MIPS opcode.
type Op uint8

// Supported opcodes.
const (
	OpUnknown Op = iota
	OpADD
	OpADDU
	OpSUB
	OpSUBU
	OpAND
	OpOR
	OpXOR
	OpNOR
	OpSLT
	OpSLTU
	OpSLL
	OpSRL
	OpSRA
	OpJR
	OpJALR
	OpSYSCALL
	OpADDI
	OpADDIU
	OpANDI
	OpORI
	OpXORI
	OpLUI
	OpSLTI
	OpSLTIU
	OpBEQ
	OpBNE
	OpBLEZ
	OpBGTZ
	OpJ
	OpJAL
	OpLW
	OpSW
	OpLB
	OpLBU
	OpLH
	OpLHU
	OpSB
	OpSH
)

// Format identifies the instruction's encoding shape.
type Format uint8

// Encoding formats.
const (
	FormatUnknown Format = iota
	FormatR
	FormatI
	FormatJ
)

// mnemonics maps each Op to its assembly mnemonic, for Dump().
var mnemonics = map[Op]string{
	OpADD: "add", OpADDU: "addu", OpSUB: "sub", OpSUBU: "subu",
	OpAND: "and", OpOR: "or", OpXOR: "xor", OpNOR: "nor",
	OpSLT: "slt", OpSLTU: "sltu", OpSLL: "sll", OpSRL: "srl", OpSRA: "sra",
	OpJR: "jr", OpJALR: "jalr", OpSYSCALL: "syscall",
	OpADDI: "addi", OpADDIU: "addiu", OpANDI: "andi", OpORI: "ori",
	OpXORI: "xori", OpLUI: "lui", OpSLTI: "slti", OpSLTIU: "sltiu",
	OpBEQ: "beq", OpBNE: "bne", OpBLEZ: "blez", OpBGTZ: "bgtz",
	OpJ: "j", OpJAL: "jal",
	OpLW: "lw", OpSW: "sw", OpLB: "lb", OpLBU: "lbu",
	OpLH: "lh", OpLHU: "lhu", OpSB: "sb", OpSH: "sh",
}

// instruction holds the statically decoded shape of a raw MIPS32 word. It
// is held by FuncInstr, which adds the dynamic (per-dispatch) fields:
// operand values, predicted/actual control flow, the ALU result, and
// loaded memory data.
type instruction struct {
	raw    uint32
	op     Op
	format Format

	rs, rt, rd uint8
	shamt      uint8
	imm        int32 // sign-extended 16-bit immediate
	target     uint32 // 26-bit jump target field, word address

	hasDest bool
	dest    uint8
}

// decode decodes a raw MIPS32 instruction word.
func decode(raw uint32) instruction {
	opcode := uint8(raw >> 26)
	rs := uint8((raw >> 21) & 0x1f)
	rt := uint8((raw >> 16) & 0x1f)
	rd := uint8((raw >> 11) & 0x1f)
	shamt := uint8((raw >> 6) & 0x1f)
	funct := uint8(raw & 0x3f)
	imm := int32(int16(raw & 0xffff))
	target := raw & 0x3ffffff

	in := instruction{raw: raw, rs: rs, rt: rt, rd: rd, shamt: shamt, imm: imm, target: target}

	if opcode == 0x00 {
		in.format = FormatR
		switch funct {
		case 0x20:
			in.op, in.hasDest, in.dest = OpADD, true, rd
		case 0x21:
			in.op, in.hasDest, in.dest = OpADDU, true, rd
		case 0x22:
			in.op, in.hasDest, in.dest = OpSUB, true, rd
		case 0x23:
			in.op, in.hasDest, in.dest = OpSUBU, true, rd
		case 0x24:
			in.op, in.hasDest, in.dest = OpAND, true, rd
		case 0x25:
			in.op, in.hasDest, in.dest = OpOR, true, rd
		case 0x26:
			in.op, in.hasDest, in.dest = OpXOR, true, rd
		case 0x27:
			in.op, in.hasDest, in.dest = OpNOR, true, rd
		case 0x2a:
			in.op, in.hasDest, in.dest = OpSLT, true, rd
		case 0x2b:
			in.op, in.hasDest, in.dest = OpSLTU, true, rd
		case 0x00:
			in.op, in.hasDest, in.dest = OpSLL, true, rd
		case 0x02:
			in.op, in.hasDest, in.dest = OpSRL, true, rd
		case 0x03:
			in.op, in.hasDest, in.dest = OpSRA, true, rd
		case 0x08:
			in.op = OpJR
		case 0x09:
			in.op, in.hasDest, in.dest = OpJALR, true, rd
		case 0x0c:
			in.op = OpSYSCALL
		default:
			in.op = OpUnknown
		}
		return in
	}

	in.format = FormatI
	switch opcode {
	case 0x08:
		in.op, in.hasDest, in.dest = OpADDI, true, rt
	case 0x09:
		in.op, in.hasDest, in.dest = OpADDIU, true, rt
	case 0x0c:
		in.op, in.hasDest, in.dest = OpANDI, true, rt
	case 0x0d:
		in.op, in.hasDest, in.dest = OpORI, true, rt
	case 0x0e:
		in.op, in.hasDest, in.dest = OpXORI, true, rt
	case 0x0f:
		in.op, in.hasDest, in.dest = OpLUI, true, rt
	case 0x0a:
		in.op, in.hasDest, in.dest = OpSLTI, true, rt
	case 0x0b:
		in.op, in.hasDest, in.dest = OpSLTIU, true, rt
	case 0x04:
		in.op = OpBEQ
	case 0x05:
		in.op = OpBNE
	case 0x06:
		in.op = OpBLEZ
	case 0x07:
		in.op = OpBGTZ
	case 0x23:
		in.op, in.hasDest, in.dest = OpLW, true, rt
	case 0x20:
		in.op, in.hasDest, in.dest = OpLB, true, rt
	case 0x24:
		in.op, in.hasDest, in.dest = OpLBU, true, rt
	case 0x21:
		in.op, in.hasDest, in.dest = OpLH, true, rt
	case 0x25:
		in.op, in.hasDest, in.dest = OpLHU, true, rt
	case 0x2b:
		in.op = OpSW
	case 0x28:
		in.op = OpSB
	case 0x29:
		in.op = OpSH
	case 0x02:
		in.format, in.op = FormatJ, OpJ
	case 0x03:
		in.format, in.op, in.hasDest, in.dest = FormatJ, OpJAL, true, 31
	default:
		in.op = OpUnknown
	}

	return in
}

func (in instruction) isBranch() bool {
	switch in.op {
	case OpBEQ, OpBNE, OpBLEZ, OpBGTZ:
		return true
	default:
		return false
	}
}

func (in instruction) isJump() bool {
	switch in.op {
	case OpJ, OpJAL, OpJR, OpJALR:
		return true
	default:
		return in.isBranch()
	}
}

func (in instruction) isLoad() bool {
	switch in.op {
	case OpLW, OpLB, OpLBU, OpLH, OpLHU:
		return true
	default:
		return false
	}
}

func (in instruction) isStore() bool {
	switch in.op {
	case OpSW, OpSB, OpSH:
		return true
	default:
		return false
	}
}

// sourceRegs returns the architectural source registers this instruction
// reads, in an order stable enough for hazard checking (duplicates and
// $zero are fine; the register file treats $zero as always-ready).
func (in instruction) sourceRegs() []uint8 {
	switch in.format {
	case FormatR:
		switch in.op {
		case OpJR, OpJALR:
			return []uint8{in.rs}
		case OpSLL, OpSRL, OpSRA:
			return []uint8{in.rt}
		case OpSYSCALL:
			return []uint8{2} // $v0 carries the syscall number
		default:
			return []uint8{in.rs, in.rt}
		}
	case FormatI:
		switch in.op {
		case OpLUI:
			return nil
		case OpBEQ, OpBNE:
			return []uint8{in.rs, in.rt}
		case OpBLEZ, OpBGTZ:
			return []uint8{in.rs}
		case OpSW, OpSB, OpSH:
			return []uint8{in.rs, in.rt}
		default:
			return []uint8{in.rs}
		}
	default:
		switch in.op {
		case OpJAL:
			return nil
		default:
			return nil
		}
	}
}

func (in instruction) mnemonic() string {
	if m, ok := mnemonics[in.op]; ok {
		return m
	}
	return fmt.Sprintf("unknown(0x%08x)", in.raw)
}
