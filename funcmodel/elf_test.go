package funcmodel_test

import (
	"encoding/binary"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/perfmips/funcmodel"
	"github.com/sarchlab/perfmips/timing/cycle"
)

var _ = Describe("MIPSMemory.LoadELF", func() {
	var tempDir string

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "funcmodel-elf-test")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		_ = os.RemoveAll(tempDir)
	})

	It("loads a valid MIPS32 ELF and exposes its entry point", func() {
		path := filepath.Join(tempDir, "test.elf")
		code := []byte{0x01, 0x02, 0x03, 0x04}
		writeMinimalMIPS32ELF(path, 0x400000, 0x4000f0, code)

		mem := funcmodel.NewMIPSMemory()
		Expect(mem.LoadELF(path)).To(Succeed())
		Expect(mem.StartPC()).To(Equal(cycle.Addr(0x4000f0)))
	})

	It("copies segment bytes into memory at the right address", func() {
		path := filepath.Join(tempDir, "code.elf")
		code := []byte{0xf0, 0x00, 0x00, 0x3c} // lui $zero, 0xf0 little-endian bytes
		writeMinimalMIPS32ELF(path, 0x4000f0, 0x4000f0, code)

		mem := funcmodel.NewMIPSMemory()
		Expect(mem.LoadELF(path)).To(Succeed())
		Expect(mem.Fetch(cycle.Addr(0x4000f0))).To(Equal(uint32(0x3c0000f0)))
	})

	It("rejects a missing file", func() {
		mem := funcmodel.NewMIPSMemory()
		Expect(mem.LoadELF("/nonexistent/path.elf")).To(HaveOccurred())
	})

	It("rejects a non-MIPS ELF", func() {
		path := filepath.Join(tempDir, "x86.elf")
		writeForeignELF(path)

		mem := funcmodel.NewMIPSMemory()
		err := mem.LoadELF(path)
		Expect(err).To(HaveOccurred())
	})
})

// writeMinimalMIPS32ELF writes a minimal valid little-endian MIPS32 ELF
// executable with a single PT_LOAD segment.
func writeMinimalMIPS32ELF(path string, loadAddr, entryPoint uint32, code []byte) {
	const ehsize = 52
	const phentsize = 32

	hdr := make([]byte, ehsize)
	copy(hdr[0:4], []byte{0x7f, 'E', 'L', 'F'})
	hdr[4] = 1 // ELFCLASS32
	hdr[5] = 1 // ELFDATA2LSB
	hdr[6] = 1 // EV_CURRENT
	binary.LittleEndian.PutUint16(hdr[16:18], 2)  // ET_EXEC
	binary.LittleEndian.PutUint16(hdr[18:20], 8)  // EM_MIPS
	binary.LittleEndian.PutUint32(hdr[20:24], 1)  // version
	binary.LittleEndian.PutUint32(hdr[24:28], entryPoint)
	binary.LittleEndian.PutUint32(hdr[28:32], ehsize) // phoff
	binary.LittleEndian.PutUint32(hdr[32:36], 0)       // shoff
	binary.LittleEndian.PutUint16(hdr[40:42], ehsize)
	binary.LittleEndian.PutUint16(hdr[42:44], phentsize)
	binary.LittleEndian.PutUint16(hdr[44:46], 1) // phnum

	ph := make([]byte, phentsize)
	binary.LittleEndian.PutUint32(ph[0:4], 1)                  // PT_LOAD
	binary.LittleEndian.PutUint32(ph[4:8], ehsize+phentsize)    // offset
	binary.LittleEndian.PutUint32(ph[8:12], loadAddr)           // vaddr
	binary.LittleEndian.PutUint32(ph[12:16], loadAddr)          // paddr
	binary.LittleEndian.PutUint32(ph[16:20], uint32(len(code))) // filesz
	binary.LittleEndian.PutUint32(ph[20:24], uint32(len(code))) // memsz
	binary.LittleEndian.PutUint32(ph[24:28], 0x5)               // PF_R|PF_X
	binary.LittleEndian.PutUint32(ph[28:32], 0x1000)            // align

	f, err := os.Create(path)
	Expect(err).NotTo(HaveOccurred())
	defer func() { _ = f.Close() }()

	_, _ = f.Write(hdr)
	_, _ = f.Write(ph)
	_, _ = f.Write(code)
}

// writeForeignELF writes a minimal valid x86-64 ELF64 binary, used to
// exercise the rejection of a non-MIPS32 file; LoadELF turns it away at
// the 32-bit class check, before the machine type is examined.
func writeForeignELF(path string) {
	hdr := make([]byte, 64)
	copy(hdr[0:4], []byte{0x7f, 'E', 'L', 'F'})
	hdr[4] = 2 // ELFCLASS64
	hdr[5] = 1
	hdr[6] = 1
	binary.LittleEndian.PutUint16(hdr[16:18], 2)
	binary.LittleEndian.PutUint16(hdr[18:20], 62) // EM_X86_64
	binary.LittleEndian.PutUint32(hdr[20:24], 1)
	binary.LittleEndian.PutUint16(hdr[52:54], 64)
	binary.LittleEndian.PutUint16(hdr[54:56], 56)
	binary.LittleEndian.PutUint16(hdr[56:58], 0)

	f, err := os.Create(path)
	Expect(err).NotTo(HaveOccurred())
	defer func() { _ = f.Close() }()
	_, _ = f.Write(hdr)
}
