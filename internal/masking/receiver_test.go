package masking_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/chaoscrypt/internal/masking"
	"github.com/san-kum/chaoscrypt/internal/metrics"
	"github.com/san-kum/chaoscrypt/internal/physics"
)

const tolerance = 0.1

func sine(n, period int, amplitude float64) []float64 {
	m := make([]float64, n)
	for k := range m {
		m[k] = amplitude * math.Sin(2*math.Pi*float64(k)/float64(period))
	}
	return m
}

// sampled keeps the residuals that carry message content.
func sampled(residual []float64, cfg masking.Config) []float64 {
	var out []float64
	for i := cfg.GraceSteps(); i < len(residual); i += cfg.Ratio {
		out = append(out, residual[i])
	}
	return out
}

func meanAbsError(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += math.Abs(a[i] - b[i])
	}
	return sum / float64(len(a))
}

var _ = Describe("Receiver", func() {
	var (
		ctx     context.Context
		txCfg   masking.Config
		message []float64
		signal  []float64
	)

	BeforeEach(func() {
		ctx = context.Background()
		txCfg = masking.Config{
			Grace:     10,
			Frequency: 44100,
			Ratio:     10,
			Epsilon:   0.01,
			Params:    physics.DefaultParams(),
			Seed:      2024,
		}
		message = sine(2000, 20, 0.5)

		var err error
		signal, err = masking.NewTransmitter(txCfg).Run(ctx, message)
		Expect(err).NotTo(HaveOccurred())
	})

	receive := func(cfg masking.Config) []float64 {
		residual, err := masking.NewReceiver(cfg).Run(ctx, signal)
		Expect(err).NotTo(HaveOccurred())
		Expect(residual).To(HaveLen(len(signal)))
		return residual
	}

	It("recovers the message when parameters and epsilon match", func() {
		rxCfg := txCfg
		rxCfg.Seed = 77

		got := sampled(receive(rxCfg), rxCfg)
		Expect(got).To(HaveLen(len(message)))
		Expect(meanAbsError(got, message)).To(BeNumerically("<", tolerance))
	})

	It("synchronizes regardless of its own initial state", func() {
		for _, seed := range []int64{1, 2, 3} {
			rxCfg := txCfg
			rxCfg.Seed = seed
			got := sampled(receive(rxCfg), rxCfg)
			Expect(meanAbsError(got, message)).To(BeNumerically("<", tolerance))
		}
	})

	It("fails to recover the message when the system parameters differ", func() {
		rxCfg := txCfg
		rxCfg.Seed = 77
		rxCfg.Params.R = 45

		got := sampled(receive(rxCfg), rxCfg)
		Expect(meanAbsError(got, message)).To(BeNumerically(">", tolerance))
	})

	It("silently rescales the message when epsilon differs", func() {
		rxCfg := txCfg
		rxCfg.Seed = 77
		rxCfg.Epsilon = 2 * txCfg.Epsilon

		got := sampled(receive(rxCfg), rxCfg)
		half := make([]float64, len(message))
		for i, v := range message {
			half[i] = v / 2
		}
		Expect(meanAbsError(got, half)).To(BeNumerically("<", tolerance/2))
		Expect(meanAbsError(got, message)).To(BeNumerically(">", meanAbsError(got, half)))
	})

	It("reports grace-phase residuals through its metrics", func() {
		rxCfg := txCfg
		rxCfg.Seed = 77
		last := rxCfg.GraceSteps()
		tail := metrics.NewSyncResidual(last-int(rxCfg.Frequency/2), last)

		rx := masking.NewReceiver(rxCfg)
		rx.AddMetric(tail)
		_, err := rx.Run(ctx, signal)
		Expect(err).NotTo(HaveOccurred())
		Expect(tail.Value()).To(BeNumerically("<", tolerance))

		rxCfg.Params.R = 45
		mismatched := metrics.NewSyncResidual(last-int(rxCfg.Frequency/2), last)
		rx = masking.NewReceiver(rxCfg)
		rx.AddMetric(mismatched)
		_, err = rx.Run(ctx, signal)
		Expect(err).NotTo(HaveOccurred())
		Expect(mismatched.Value()).To(BeNumerically(">", 10*tail.Value()))
	})

	It("keeps every sample after the grace prefix when ratio is 1", func() {
		cfg := masking.Config{Grace: 0.5, Frequency: 1000, Ratio: 1, Epsilon: 0.01, Params: physics.DefaultParams(), Seed: 5}
		short, err := masking.NewTransmitter(cfg).Run(ctx, sine(300, 30, 0.4))
		Expect(err).NotTo(HaveOccurred())

		residual, err := masking.NewReceiver(cfg).Run(ctx, short)
		Expect(err).NotTo(HaveOccurred())
		Expect(sampled(residual, cfg)).To(HaveLen(len(short) - cfg.GraceSteps()))
	})

	It("returns an empty residual for an empty signal", func() {
		residual, err := masking.NewReceiver(txCfg).Run(ctx, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(residual).To(BeEmpty())
	})
})
