// Package pipeline wires the masking core to files: audio in, container out
// and back again.
package pipeline

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/san-kum/chaoscrypt/internal/audio"
	"github.com/san-kum/chaoscrypt/internal/conditioner"
	"github.com/san-kum/chaoscrypt/internal/config"
	"github.com/san-kum/chaoscrypt/internal/container"
	"github.com/san-kum/chaoscrypt/internal/masking"
	"github.com/san-kum/chaoscrypt/internal/storage"
)

// traceSamples caps the preview kept in the run ledger.
const traceSamples = 2048

const (
	ModeEncrypt = "encrypt"
	ModeDecrypt = "decrypt"
	ModeOutput  = "output"
)

type Pipeline struct {
	codec audio.Codec
	cfg   *config.Config
	log   *zap.Logger
	store *storage.Store
}

// Result summarizes one completed operation.
type Result struct {
	RunID     string
	Mode      string
	Input     string
	Output    string
	Frequency float64
	Ratio     int
	Signal    int // composite signal length
	Samples   int // samples in the produced or consumed clip
	Metrics   map[string]float64
}

func New(codec audio.Codec, cfg *config.Config, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{codec: codec, cfg: cfg, log: log}
}

// WithStore records every encrypt and decrypt run in s.
func (p *Pipeline) WithStore(s *storage.Store) *Pipeline {
	p.store = s
	return p
}

func (p *Pipeline) runConfig(frequency float64, ratio int) masking.Config {
	return masking.Config{
		Grace:     p.cfg.Grace,
		Frequency: frequency,
		Ratio:     ratio,
		Epsilon:   p.cfg.Epsilon,
		Params:    p.cfg.Params(),
		Seed:      p.cfg.Seed,
	}
}

// Encrypt masks the audio at in and writes the container to out. The
// integrator runs at the audio sample rate.
func (p *Pipeline) Encrypt(ctx context.Context, in, out string, ratio int) (*Result, error) {
	if ratio < 1 {
		return nil, fmt.Errorf("%w: decimation ratio must be >= 1, got %d", masking.ErrInvalidConfig, ratio)
	}

	clip, err := p.codec.Load(in)
	if err != nil {
		return nil, err
	}

	mc := p.runConfig(float64(clip.SampleRate), ratio)
	if err := mc.Validate(); err != nil {
		return nil, err
	}

	p.log.Debug("transmitting",
		zap.String("input", in),
		zap.Int("message_samples", len(clip.Samples)),
		zap.Float64("frequency", mc.Frequency),
		zap.Int("grace_steps", mc.GraceSteps()),
		zap.Int("ratio", ratio),
	)

	signal, err := masking.NewTransmitter(mc).Run(ctx, clip.Samples)
	if err != nil {
		return nil, fmt.Errorf("transmit: %w", err)
	}

	rec := container.NewRecord(mc.Grace, mc.Frequency, mc.Ratio, mc.Epsilon, signal)
	if err := container.Save(out, rec); err != nil {
		return nil, err
	}

	res := &Result{
		Mode:      ModeEncrypt,
		Input:     in,
		Output:    out,
		Frequency: mc.Frequency,
		Ratio:     mc.Ratio,
		Signal:    len(signal),
		Samples:   len(clip.Samples),
		Metrics:   map[string]float64{"duration": rec.Duration},
	}
	p.record(res, mc, conditioner.Decimate(signal, mc.GraceSteps(), mc.Ratio))

	p.log.Info("encrypted",
		zap.String("output", out),
		zap.Int("signal_samples", res.Signal),
		zap.Float64("duration", rec.Duration),
	)
	return res, nil
}

// Decrypt recovers the message from the container at in and writes it as
// audio at the container's sampling frequency.
func (p *Pipeline) Decrypt(ctx context.Context, in, out string) (*Result, error) {
	rec, err := container.Load(in)
	if err != nil {
		return nil, err
	}

	mc := p.runConfig(rec.Frequency, rec.Ratio)
	mc.Grace = rec.Grace
	mc.Epsilon = rec.Epsilon
	if err := mc.Validate(); err != nil {
		return nil, fmt.Errorf("container %s: %w", in, err)
	}

	rx := masking.NewReceiver(mc)
	observers := DefaultMetrics(mc)
	for _, m := range observers {
		rx.AddMetric(m)
	}

	p.log.Debug("receiving",
		zap.String("input", in),
		zap.Int("signal_samples", len(rec.Signal)),
		zap.Float64("frequency", mc.Frequency),
		zap.Float64("epsilon", mc.Epsilon),
	)

	residual, err := rx.Run(ctx, rec.Signal)
	if err != nil {
		return nil, fmt.Errorf("receive: %w", err)
	}

	message := conditioner.Decode(residual, mc.GraceSteps(), mc.Ratio)
	clip := &audio.Clip{Samples: message, SampleRate: int(math.Round(mc.Frequency))}
	if err := p.codec.Save(out, clip); err != nil {
		return nil, err
	}

	metrics := make(map[string]float64, len(observers))
	for _, m := range observers {
		metrics[m.Name()] = m.Value()
	}

	res := &Result{
		Mode:      ModeDecrypt,
		Input:     in,
		Output:    out,
		Frequency: mc.Frequency,
		Ratio:     mc.Ratio,
		Signal:    len(rec.Signal),
		Samples:   len(message),
		Metrics:   metrics,
	}
	p.record(res, mc, message)

	p.log.Info("decrypted",
		zap.String("output", out),
		zap.Int("message_samples", res.Samples),
		zap.Float64("sync_residual_rms", metrics[syncResidualName]),
	)
	return res, nil
}

// Output renders the stored composite signal itself as audio, without
// recovering anything.
func (p *Pipeline) Output(_ context.Context, in, out string) (*Result, error) {
	rec, err := container.Load(in)
	if err != nil {
		return nil, err
	}

	skip := masking.GraceSteps(rec.Grace, rec.Frequency)
	samples := conditioner.Encode(rec.Signal, skip, rec.Ratio)

	clip := &audio.Clip{Samples: samples, SampleRate: int(math.Round(rec.Frequency))}
	if err := p.codec.Save(out, clip); err != nil {
		return nil, err
	}

	p.log.Info("rendered composite signal",
		zap.String("output", out),
		zap.Int("samples", len(samples)),
	)

	return &Result{
		Mode:      ModeOutput,
		Input:     in,
		Output:    out,
		Frequency: rec.Frequency,
		Ratio:     rec.Ratio,
		Signal:    len(rec.Signal),
		Samples:   len(samples),
	}, nil
}

// record writes res to the ledger. Ledger failures are logged, not returned:
// the primary output already exists at this point.
func (p *Pipeline) record(res *Result, mc masking.Config, trace []float64) {
	if p.store == nil {
		return
	}
	if len(trace) > traceSamples {
		trace = trace[:traceSamples]
	}

	id, err := p.store.Save(storage.RunMetadata{
		Mode:      res.Mode,
		Input:     res.Input,
		Output:    res.Output,
		Seed:      mc.Seed,
		Grace:     mc.Grace,
		Frequency: mc.Frequency,
		Ratio:     mc.Ratio,
		Epsilon:   mc.Epsilon,
		Samples:   res.Samples,
		System:    mc.Params.Map(),
		Metrics:   res.Metrics,
	}, trace)
	if err != nil {
		p.log.Warn("failed to record run", zap.Error(err))
		return
	}
	res.RunID = id
}
