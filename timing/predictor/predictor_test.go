package predictor_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/perfmips/timing/cycle"
	"github.com/sarchlab/perfmips/timing/predictor"
)

var _ = Describe("New", func() {
	It("rejects an unknown bp-mode", func() {
		_, err := predictor.New(predictor.Config{Mode: "quantum"})
		Expect(err).To(HaveOccurred())
	})

	It("rejects a bp-size that isn't a power of two", func() {
		_, err := predictor.New(predictor.Config{Mode: predictor.ModeDynamicTwoBit, Size: 100, Ways: 4})
		Expect(err).To(HaveOccurred())
	})

	It("rejects a bp-ways that doesn't divide bp-size", func() {
		_, err := predictor.New(predictor.Config{Mode: predictor.ModeDynamicTwoBit, Size: 128, Ways: 3})
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("unseen PC", func() {
	for _, mode := range []string{
		predictor.ModeDynamicTwoBit,
		predictor.ModeStaticBackward,
	} {
		mode := mode
		It("predicts not-taken and pc+4 for "+mode, func() {
			p, err := predictor.New(predictor.Config{Mode: mode, Size: 128, Ways: 16})
			Expect(err).NotTo(HaveOccurred())

			Expect(p.IsTaken(cycle.Addr(0x1000))).To(BeFalse())
			Expect(p.GetTarget(cycle.Addr(0x1000))).To(Equal(cycle.Addr(0x1004)))
		})
	}
})

var _ = Describe("always_taken", func() {
	It("always predicts taken", func() {
		p, err := predictor.New(predictor.Config{Mode: predictor.ModeAlwaysTaken})
		Expect(err).NotTo(HaveOccurred())

		Expect(p.IsTaken(cycle.Addr(0x8000))).To(BeTrue())
		Expect(p.GetTarget(cycle.Addr(0x8000))).To(Equal(cycle.Addr(0x8004)))
	})
})

var _ = Describe("always_not_taken", func() {
	It("always predicts not-taken", func() {
		p, err := predictor.New(predictor.Config{Mode: predictor.ModeAlwaysNotTaken})
		Expect(err).NotTo(HaveOccurred())

		Expect(p.IsTaken(cycle.Addr(0x8000))).To(BeFalse())
	})
})

var _ = Describe("dynamic_two_bit", func() {
	var p predictor.Predictor

	BeforeEach(func() {
		var err error
		p, err = predictor.New(predictor.Config{Mode: predictor.ModeDynamicTwoBit, Size: 16, Ways: 4})
		Expect(err).NotTo(HaveOccurred())
	})

	It("predicts taken with the previously observed target after a taken/taken sequence (S6)", func() {
		pc := cycle.Addr(0x400010)
		target := cycle.Addr(0x400100)

		p.Update(true, pc, target)
		Expect(p.IsTaken(pc)).To(BeTrue())

		p.Update(true, pc, target)
		Expect(p.IsTaken(pc)).To(BeTrue())
		Expect(p.GetTarget(pc)).To(Equal(target))
	})

	It("reverts to not-taken after one not-taken update following one taken update", func() {
		pc := cycle.Addr(0x400020)
		target := cycle.Addr(0x400200)

		p.Update(true, pc, target)
		Expect(p.IsTaken(pc)).To(BeTrue())

		p.Update(false, pc, target)
		Expect(p.IsTaken(pc)).To(BeFalse()) // a new entry starts weakly taken, so one not-taken update flips it

		p.Update(false, pc, target)
		Expect(p.IsTaken(pc)).To(BeFalse())
	})

	It("replaces the LRU way within a set once full", func() {
		// Size 16, ways 4 -> 4 sets. All five PCs below map to the same set
		// (bits above the set-index mask are identical) so they collide and
		// force an LRU eviction within that single set.
		base := cycle.Addr(0x400000)
		setStride := cycle.Addr(4 * 4) // sets=4, so stride of 16 bytes keeps same set
		pcs := []cycle.Addr{base, base + setStride, base + 2*setStride, base + 3*setStride, base + 4*setStride}

		for i, pc := range pcs[:4] {
			p.Update(true, pc, cycle.Addr(0x500000+uint32(i)))
		}

		// Touch pcs[0] again so it's MRU, then insert a 5th colliding PC,
		// which should evict pcs[1] (now LRU), not pcs[0].
		p.Update(true, pcs[0], cycle.Addr(0x500000))
		p.Update(true, pcs[4], cycle.Addr(0x600000))

		Expect(p.IsTaken(pcs[0])).To(BeTrue())
	})
})
