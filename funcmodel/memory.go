package funcmodel

import (
	"github.com/sarchlab/perfmips/timing/cycle"
)

const pageSize = 4096

// MIPSMemory is a sparse, byte-addressed little-endian memory backing the
// functional model. Pages are allocated lazily on first touch so traces
// with a large stack/heap span don't force an upfront allocation.
type MIPSMemory struct {
	pages      map[uint32][]byte
	entryPoint cycle.Addr
}

// NewMIPSMemory returns an empty memory with no program installed.
func NewMIPSMemory() *MIPSMemory {
	return &MIPSMemory{pages: make(map[uint32][]byte)}
}

// LoadELF loads a MIPS32 ELF binary's segments into memory and records its
// entry point, returned later by StartPC.
func (m *MIPSMemory) LoadELF(path string) error {
	prog, err := loadELF(path)
	if err != nil {
		return err
	}

	for _, seg := range prog.segments {
		for i, b := range seg.data {
			m.WriteByte(seg.addr+cycle.Addr(i), b)
		}
	}

	m.entryPoint = prog.entryPoint
	return nil
}

// StartPC returns the program's entry point.
func (m *MIPSMemory) StartPC() cycle.Addr { return m.entryPoint }

func (m *MIPSMemory) page(addr uint32) []byte {
	base := addr &^ (pageSize - 1)
	p, ok := m.pages[base]
	if !ok {
		p = make([]byte, pageSize)
		m.pages[base] = p
	}
	return p
}

// ReadByte reads a single byte.
func (m *MIPSMemory) ReadByte(addr cycle.Addr) uint8 {
	a := uint32(addr)
	return m.page(a)[a&(pageSize-1)]
}

// WriteByte writes a single byte.
func (m *MIPSMemory) WriteByte(addr cycle.Addr, v uint8) {
	a := uint32(addr)
	m.page(a)[a&(pageSize-1)] = v
}

// ReadHalf reads a little-endian 16-bit halfword.
func (m *MIPSMemory) ReadHalf(addr cycle.Addr) uint16 {
	lo := uint16(m.ReadByte(addr))
	hi := uint16(m.ReadByte(addr + 1))
	return lo | hi<<8
}

// WriteHalf writes a little-endian 16-bit halfword.
func (m *MIPSMemory) WriteHalf(addr cycle.Addr, v uint16) {
	m.WriteByte(addr, uint8(v))
	m.WriteByte(addr+1, uint8(v>>8))
}

// ReadWord reads a little-endian 32-bit word.
func (m *MIPSMemory) ReadWord(addr cycle.Addr) uint32 {
	lo := uint32(m.ReadHalf(addr))
	hi := uint32(m.ReadHalf(addr + 2))
	return lo | hi<<16
}

// WriteWord writes a little-endian 32-bit word.
func (m *MIPSMemory) WriteWord(addr cycle.Addr, v uint32) {
	m.WriteHalf(addr, uint16(v))
	m.WriteHalf(addr+2, uint16(v>>16))
}

// Fetch reads the instruction word at pc. MIPS32 instructions are always
// word-aligned so this is just ReadWord with an intention-revealing name.
func (m *MIPSMemory) Fetch(pc cycle.Addr) uint32 { return m.ReadWord(pc) }
