package masking_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/chaoscrypt/internal/dynamo"
	"github.com/san-kum/chaoscrypt/internal/masking"
	"github.com/san-kum/chaoscrypt/internal/physics"
)

var _ = Describe("Transmitter", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	DescribeTable("emits grace×frequency + len(message)×ratio samples",
		func(grace, freq float64, ratio, n int) {
			cfg := masking.Config{Grace: grace, Frequency: freq, Ratio: ratio, Epsilon: 0.01, Params: physics.DefaultParams(), Seed: 7}
			signal, err := masking.NewTransmitter(cfg).Run(ctx, make([]float64, n))
			Expect(err).NotTo(HaveOccurred())
			Expect(signal).To(HaveLen(int(grace*freq) + n*ratio))
		},
		Entry("ratio 1", 1.0, 100.0, 1, 7),
		Entry("ratio 3", 2.0, 50.0, 3, 7),
		Entry("half unit grace", 0.5, 1000.0, 4, 7),
		Entry("no grace", 0.0, 100.0, 2, 4),
	)

	It("yields only the grace trajectory for an empty message", func() {
		cfg := masking.Config{Grace: 1, Frequency: 200, Ratio: 5, Epsilon: 0.01, Params: physics.DefaultParams(), Seed: 1}
		signal, err := masking.NewTransmitter(cfg).Run(ctx, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(signal).To(HaveLen(200))
	})

	It("is reproducible for a fixed seed", func() {
		cfg := masking.Config{Grace: 1, Frequency: 1000, Ratio: 3, Epsilon: 0.01, Params: physics.DefaultParams(), Seed: 99}
		message := []float64{0.1, 0.2, -0.3}

		a, err := masking.NewTransmitter(cfg).Run(ctx, message)
		Expect(err).NotTo(HaveOccurred())
		b, err := masking.NewTransmitter(cfg).Run(ctx, message)
		Expect(err).NotTo(HaveOccurred())
		Expect(a).To(Equal(b))

		cfg.Seed = 100
		c, err := masking.NewTransmitter(cfg).Run(ctx, message)
		Expect(err).NotTo(HaveOccurred())
		Expect(c).NotTo(Equal(a))
	})

	It("injects the message at stride ratio starting at the first message step", func() {
		message := []float64{0.5, -0.5, 0.3, -0.3}
		cfg := masking.Config{Grace: 0, Frequency: 100, Ratio: 2, Epsilon: 0.01, Params: physics.DefaultParams(), Seed: 42}

		signal, err := masking.NewTransmitter(cfg).Run(ctx, message)
		Expect(err).NotTo(HaveOccurred())
		Expect(signal).To(HaveLen(8))

		// the message never feeds back into the trajectory, so a silent run
		// from the same seed exposes the carrier
		carrier, err := masking.NewTransmitter(cfg).Run(ctx, make([]float64, len(message)))
		Expect(err).NotTo(HaveOccurred())

		for i := range signal {
			if i%2 == 0 {
				Expect(signal[i]-carrier[i]).To(BeNumerically("~", cfg.Epsilon*message[i/2], 1e-12))
			} else {
				Expect(signal[i]).To(Equal(carrier[i]))
			}
		}
	})

	It("rejects an invalid configuration", func() {
		cfg := masking.Config{Grace: 0, Frequency: 100, Ratio: 0, Epsilon: 0.01, Params: physics.DefaultParams()}
		_, err := masking.NewTransmitter(cfg).Run(ctx, []float64{1})
		Expect(err).To(MatchError(masking.ErrInvalidConfig))
	})

	It("stops when its context is canceled", func() {
		cfg := masking.Config{Grace: 1, Frequency: 1000, Ratio: 1, Epsilon: 0.01, Params: physics.DefaultParams()}
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := masking.NewTransmitter(cfg).Run(canceled, nil)
		Expect(err).To(MatchError(dynamo.ErrCanceled))
	})

	It("reports divergence instead of emitting NaN", func() {
		// a step far beyond the field's stability region blows up
		cfg := masking.Config{Grace: 1000, Frequency: 1, Ratio: 1, Epsilon: 0.01, Params: physics.DefaultParams(), Seed: 3}
		_, err := masking.NewTransmitter(cfg).Run(ctx, nil)
		Expect(err).To(MatchError(dynamo.ErrUnstable))

		var stepErr *dynamo.StepError
		Expect(err).To(BeAssignableToTypeOf(stepErr))
	})
})
