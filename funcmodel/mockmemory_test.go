package funcmodel_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/perfmips/funcmodel"
	"github.com/sarchlab/perfmips/internal/mocks"
	"github.com/sarchlab/perfmips/timing/cycle"
)

var _ = Describe("FuncInstr.LoadStore against a mock collaborator", func() {
	var ctrl *gomock.Controller

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
	})

	AfterEach(func() {
		ctrl.Finish()
	})

	It("issues exactly one WriteWord for a store, at the computed address", func() {
		mem := mocks.NewMockMemory(ctrl)
		mem.EXPECT().WriteWord(cycle.Addr(0x1000), uint32(0xdeadbeef))

		// sw $t1, 0($t0): opcode 0x2b, rs=8, rt=9, imm=0.
		const swRaw uint32 = 0xad090000
		sw := funcmodel.NewFuncInstr(swRaw, cycle.Addr(0x3000), false, cycle.Addr(0x3004))
		sw.SetSourceValues(0x1000, 0xdeadbeef)
		sw.Execute()
		sw.LoadStore(mem)
	})

	It("issues exactly one ReadWord for a load, at the computed address", func() {
		mem := mocks.NewMockMemory(ctrl)
		mem.EXPECT().ReadWord(cycle.Addr(0x1004)).Return(uint32(7))

		// lw $t2, 4($t0): opcode 0x23, rs=8, rt=10, imm=4.
		const lwRaw uint32 = 0x8d0a0004
		lw := funcmodel.NewFuncInstr(lwRaw, cycle.Addr(0x3000), false, cycle.Addr(0x3004))
		lw.SetSourceValues(0x1000, 0)
		lw.Execute()
		lw.LoadStore(mem)

		Expect(lw.ResultValue()).To(Equal(uint32(7)))
	})
})
