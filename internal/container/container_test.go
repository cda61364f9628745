package container_test

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/chaoscrypt/internal/container"
	"github.com/san-kum/chaoscrypt/internal/masking"
	"github.com/san-kum/chaoscrypt/internal/physics"
)

var _ = Describe("Record", func() {
	var rec *container.Record

	BeforeEach(func() {
		cfg := masking.Config{Grace: 0.5, Frequency: 1000, Ratio: 3, Epsilon: 0.01, Params: physics.DefaultParams(), Seed: 11}
		signal, err := masking.NewTransmitter(cfg).Run(context.Background(), []float64{0.25, -1, 1.0 / 3, 0})
		Expect(err).NotTo(HaveOccurred())
		rec = container.NewRecord(cfg.Grace, cfg.Frequency, cfg.Ratio, cfg.Epsilon, signal)
	})

	It("derives the total duration from the signal length", func() {
		Expect(rec.Signal).To(HaveLen(512))
		Expect(rec.Duration).To(Equal(0.512))
	})

	It("round-trips every field bit for bit", func() {
		var buf bytes.Buffer
		Expect(container.Write(&buf, rec)).To(Succeed())

		got, err := container.Read(&buf)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(rec))
	})

	It("writes the header in fixed order, one field per line", func() {
		var buf bytes.Buffer
		Expect(container.Write(&buf, rec)).To(Succeed())

		lines := strings.SplitN(buf.String(), "\n", 6)
		Expect(lines[:5]).To(Equal([]string{"0.5", "0.512", "1000", "3", "0.01"}))
		Expect(strings.Fields(lines[5])).To(HaveLen(len(rec.Signal)))
	})

	It("recomputes a stale duration on write", func() {
		rec.Duration = 99
		rec.Signal = rec.Signal[:100]

		var buf bytes.Buffer
		Expect(container.Write(&buf, rec)).To(Succeed())
		got, err := container.Read(&buf)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Duration).To(Equal(0.1))
	})

	It("round-trips through the filesystem", func() {
		path := filepath.Join(GinkgoT().TempDir(), "msg.chaos")
		Expect(container.Save(path, rec)).To(Succeed())

		got, err := container.Load(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(rec))

		entries, err := os.ReadDir(filepath.Dir(path))
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(1))
	})

	It("keeps extreme values exact", func() {
		rec.Signal = []float64{math.SmallestNonzeroFloat64, math.MaxFloat64, -0.1, 1e-300, 123456789.123456789}
		var buf bytes.Buffer
		Expect(container.Write(&buf, rec)).To(Succeed())

		got, err := container.Read(&buf)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Signal).To(Equal(rec.Signal))
	})
})

var _ = Describe("Read", func() {
	It("accepts a header with no signal", func() {
		got, err := container.Read(strings.NewReader("10\n0\n44100\n10\n0.01\n"))
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Signal).To(BeEmpty())
		Expect(got.Ratio).To(Equal(10))
	})

	It("accepts any whitespace between samples", func() {
		got, err := container.Read(strings.NewReader("0 0.03 100 1 0.01\n1 2\n\t3   "))
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Signal).To(Equal([]float64{1, 2, 3}))
	})

	It("does not validate header consistency", func() {
		got, err := container.Read(strings.NewReader("-1\n5\n-44100\n-2\n0\n0.5"))
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Ratio).To(Equal(-2))
		Expect(got.Frequency).To(Equal(-44100.0))
	})

	DescribeTable("rejects malformed records",
		func(input string) {
			_, err := container.Read(strings.NewReader(input))
			Expect(err).To(MatchError(container.ErrMalformed))
		},
		Entry("empty", ""),
		Entry("truncated header", "10\n1\n44100\n"),
		Entry("non-numeric grace", "ten\n1\n44100\n10\n0.01\n"),
		Entry("fractional ratio", "10\n1\n44100\n2.5\n0.01\n"),
		Entry("garbage sample", "10\n1\n44100\n10\n0.01\n0.1 0.2 x 0.4"),
	)
})

var _ = Describe("Load", func() {
	It("reports a missing file", func() {
		_, err := container.Load(filepath.Join(GinkgoT().TempDir(), "missing.chaos"))
		Expect(err).To(MatchError(os.ErrNotExist))
	})

	It("fails without leaving output when the directory is missing", func() {
		dir := filepath.Join(GinkgoT().TempDir(), "nope")
		err := container.Save(filepath.Join(dir, "x.chaos"), container.NewRecord(0, 1, 1, 1, nil))
		Expect(err).To(HaveOccurred())
		_, statErr := os.Stat(dir)
		Expect(os.IsNotExist(statErr)).To(BeTrue())
	})
})
