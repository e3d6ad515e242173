package funcmodel

import (
	"debug/elf"
	"fmt"
	"io"

	"github.com/sarchlab/perfmips/timing/cycle"
)

// DefaultStackTop is the conventional top of the user stack for a MIPS32
// Linux-style address space.
const DefaultStackTop = 0x7ffff000

// DefaultStackSize is the default stack reservation.
const DefaultStackSize = 8 * 1024 * 1024

// segment is a loadable ELF segment, copied into guest memory at Load time.
type segment struct {
	addr cycle.Addr
	data []byte
	size uint32
}

// program is a loaded MIPS32 ELF binary, ready to be installed into a
// MIPSMemory.
type program struct {
	entryPoint cycle.Addr
	segments   []segment
	initialSP  cycle.Addr
}

// loadELF parses a little-endian MIPS32 ELF binary.
func loadELF(path string) (*program, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("funcmodel: open ELF: %w", err)
	}
	defer func() { _ = f.Close() }()

	if f.Class != elf.ELFCLASS32 {
		return nil, fmt.Errorf("funcmodel: not a 32-bit ELF file")
	}
	if f.Machine != elf.EM_MIPS {
		return nil, fmt.Errorf("funcmodel: not a MIPS ELF file (machine type: %v)", f.Machine)
	}

	prog := &program{
		entryPoint: cycle.Addr(f.Entry),
		initialSP:  DefaultStackTop,
	}

	for _, phdr := range f.Progs {
		if phdr.Type != elf.PT_LOAD {
			continue
		}

		data := make([]byte, phdr.Filesz)
		if phdr.Filesz > 0 {
			n, err := phdr.ReadAt(data, 0)
			if err != nil && err != io.EOF {
				return nil, fmt.Errorf("funcmodel: read segment at 0x%x: %w", phdr.Vaddr, err)
			}
			if uint64(n) != phdr.Filesz {
				return nil, fmt.Errorf("funcmodel: short read for segment at 0x%x: got %d, want %d", phdr.Vaddr, n, phdr.Filesz)
			}
		}

		prog.segments = append(prog.segments, segment{
			addr: cycle.Addr(phdr.Vaddr),
			data: data,
			size: uint32(phdr.Memsz),
		})
	}

	return prog, nil
}
