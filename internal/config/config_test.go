package config_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/perfmips/internal/config"
	"github.com/sarchlab/perfmips/timing/predictor"
)

var _ = Describe("Parse", func() {
	It("resolves trace path, instrs, and predictor defaults", func() {
		opts, err := config.Parse([]string{"--instrs", "100", "trace.elf"})
		Expect(err).NotTo(HaveOccurred())
		Expect(opts.HelpRequested).To(BeFalse())
		Expect(opts.TracePath).To(Equal("trace.elf"))
		Expect(opts.InstrsToRun).To(Equal(uint64(100)))
		Expect(opts.BPMode).To(Equal(predictor.ModeDynamicTwoBit))
		Expect(opts.BPSize).To(Equal(uint32(128)))
		Expect(opts.BPWays).To(Equal(uint32(16)))
	})

	It("honors an explicit predictor mode override", func() {
		opts, err := config.Parse([]string{
			"--instrs", "5", "--bp-mode", predictor.ModeAlwaysTaken, "trace.elf",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(opts.BPMode).To(Equal(predictor.ModeAlwaysTaken))
	})

	It("rejects a missing required --instrs flag", func() {
		_, err := config.Parse([]string{"trace.elf"})
		Expect(err).To(HaveOccurred())
	})

	It("rejects an unknown flag", func() {
		_, err := config.Parse([]string{"--instrs", "5", "--bogus", "trace.elf"})
		Expect(err).To(HaveOccurred())
	})

	It("rejects a missing positional trace path", func() {
		_, err := config.Parse([]string{"--instrs", "5"})
		Expect(err).To(HaveOccurred())
	})

	It("reports HelpRequested for --help without error", func() {
		opts, err := config.Parse([]string{"--help"})
		Expect(err).NotTo(HaveOccurred())
		Expect(opts.HelpRequested).To(BeTrue())
	})
})
