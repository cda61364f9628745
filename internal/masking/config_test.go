package masking_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/chaoscrypt/internal/masking"
	"github.com/san-kum/chaoscrypt/internal/physics"
)

var _ = Describe("Config", func() {
	valid := func() masking.Config {
		return masking.Config{
			Grace:     10,
			Frequency: 44100,
			Ratio:     10,
			Epsilon:   0.01,
			Params:    physics.DefaultParams(),
		}
	}

	It("accepts a well-formed configuration", func() {
		Expect(valid().Validate()).To(Succeed())
	})

	DescribeTable("rejects invalid configurations",
		func(mutate func(*masking.Config)) {
			cfg := valid()
			mutate(&cfg)
			Expect(cfg.Validate()).To(MatchError(masking.ErrInvalidConfig))
		},
		Entry("zero ratio", func(c *masking.Config) { c.Ratio = 0 }),
		Entry("negative ratio", func(c *masking.Config) { c.Ratio = -3 }),
		Entry("zero epsilon", func(c *masking.Config) { c.Epsilon = 0 }),
		Entry("NaN epsilon", func(c *masking.Config) { c.Epsilon = math.NaN() }),
		Entry("zero frequency", func(c *masking.Config) { c.Frequency = 0 }),
		Entry("negative frequency", func(c *masking.Config) { c.Frequency = -1 }),
		Entry("NaN frequency", func(c *masking.Config) { c.Frequency = math.NaN() }),
		Entry("negative grace", func(c *masking.Config) { c.Grace = -1 }),
		Entry("grace too long to represent", func(c *masking.Config) { c.Grace = 1e300 }),
		Entry("grace just past the step cap", func(c *masking.Config) { c.Grace = (masking.MaxGraceSteps + 1) / c.Frequency }),
	)

	DescribeTable("GraceSteps rounds grace × frequency",
		func(grace, freq float64, want int) {
			Expect(masking.GraceSteps(grace, freq)).To(Equal(want))
		},
		Entry("default", 10.0, 44100.0, 441000),
		Entry("zero grace", 0.0, 100.0, 0),
		Entry("fractional product", 0.1, 44100.0, 4410),
		Entry("sub-step grace", 0.001, 100.0, 0),
		Entry("saturates instead of wrapping", 1e300, 44100.0, masking.MaxGraceSteps),
		Entry("saturates on infinity", math.Inf(1), 1.0, masking.MaxGraceSteps),
	)

	It("refuses to transmit with an oversized grace instead of panicking", func() {
		cfg := valid()
		cfg.Grace = 1e300
		_, err := masking.NewTransmitter(cfg).Run(context.Background(), []float64{0.1})
		Expect(err).To(MatchError(masking.ErrInvalidConfig))
	})
})
