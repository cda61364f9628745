package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/chaoscrypt/internal/audio"
	"github.com/san-kum/chaoscrypt/internal/config"
	"github.com/san-kum/chaoscrypt/internal/container"
	"github.com/san-kum/chaoscrypt/internal/masking"
	"github.com/san-kum/chaoscrypt/internal/pipeline"
	"github.com/san-kum/chaoscrypt/internal/storage"
)

// syncWarnThreshold is the grace-phase RMS residual above which the receiver
// is reported as not synchronized.
const syncWarnThreshold = 1.0

// loadConfig layers the config file, preset, --param and --seed over the
// defaults, in that order. A zero seed is replaced by one from the clock.
func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := a.layerConfig(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	return cfg, nil
}

func (a *app) layerConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if a.configFile != "" {
		loaded, err := config.Load(a.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if a.preset != "" && !cfg.ApplyPreset(a.preset) {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", a.preset, config.ListPresets())
	}

	for _, kv := range a.params {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --param %q: want name=value", kv)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --param %q: %w", kv, err)
		}
		if err := cfg.SetParam(strings.TrimSpace(name), v); err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("seed") {
		cfg.Seed = a.seed
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (a *app) newPipeline(cmd *cobra.Command, ledger bool) (*pipeline.Pipeline, error) {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	p := pipeline.New(audio.NewWAV(cfg.BitDepth), cfg, a.log)
	if ledger && a.dataDir != "" {
		st := storage.New(a.dataDir)
		if err := st.Init(); err != nil {
			return nil, err
		}
		p.WithStore(st)
	}
	return p, nil
}

func (a *app) runEncrypt(cmd *cobra.Command, args []string) error {
	if a.ratio < 1 {
		return fmt.Errorf("%w: -s must be >= 1, got %d", masking.ErrInvalidConfig, a.ratio)
	}

	p, err := a.newPipeline(cmd, true)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "encrypting %s...\n", a.input)
	start := time.Now()

	res, err := p.Encrypt(cmd.Context(), a.input, a.output, a.ratio)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, goodStyle.Render(fmt.Sprintf("completed in %v", time.Since(start).Round(time.Millisecond))))
	printResult(cmd, res)
	return nil
}

func (a *app) runDecrypt(cmd *cobra.Command, args []string) error {
	p, err := a.newPipeline(cmd, true)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "decrypting %s...\n", a.input)
	start := time.Now()

	res, err := p.Decrypt(cmd.Context(), a.input, a.output)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, goodStyle.Render(fmt.Sprintf("completed in %v", time.Since(start).Round(time.Millisecond))))
	printResult(cmd, res)
	if res.Metrics["sync_residual_rms"] > syncWarnThreshold {
		fmt.Fprintln(out, warnStyle.Render("receiver did not synchronize; the system coefficients probably differ from the sender's"))
	}
	return nil
}

func (a *app) runOutput(cmd *cobra.Command, args []string) error {
	p, err := a.newPipeline(cmd, false)
	if err != nil {
		return err
	}

	res, err := p.Output(cmd.Context(), a.input, a.output)
	if err != nil {
		return err
	}
	printResult(cmd, res)
	return nil
}

func printResult(cmd *cobra.Command, res *pipeline.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, title(res.Mode))
	if res.RunID != "" {
		fmt.Fprintln(out, field("run id", res.RunID))
	}
	fmt.Fprintln(out, field("output", res.Output))
	fmt.Fprintln(out, field("frequency", res.Frequency))
	fmt.Fprintln(out, field("ratio", res.Ratio))
	fmt.Fprintln(out, field("signal samples", res.Signal))
	fmt.Fprintln(out, field("audio samples", res.Samples))

	names := make([]string, 0, len(res.Metrics))
	for name := range res.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintln(out, field(name, fmt.Sprintf("%.6g", res.Metrics[name])))
	}
}

type inspection struct {
	Grace          float64  `json:"grace"`
	Duration       float64  `json:"duration"`
	StoredDuration float64  `json:"stored_duration"`
	Frequency      float64  `json:"frequency"`
	Ratio          int      `json:"ratio"`
	Epsilon        float64  `json:"epsilon"`
	Samples        int      `json:"samples"`
	GraceSteps     int      `json:"grace_steps"`
	MessageSamples int      `json:"message_samples"`
	Exponent       *float64 `json:"lyapunov_exponent,omitempty"`
}

func inspect(rec *container.Record) inspection {
	grace := masking.GraceSteps(rec.Grace, rec.Frequency)
	ratio := max(rec.Ratio, 1)
	message := 0
	if rest := len(rec.Signal) - grace; rest > 0 {
		message = (rest + ratio - 1) / ratio
	}
	return inspection{
		Grace:          rec.Grace,
		Duration:       rec.TotalDuration(),
		StoredDuration: rec.Duration,
		Frequency:      rec.Frequency,
		Ratio:          rec.Ratio,
		Epsilon:        rec.Epsilon,
		Samples:        len(rec.Signal),
		GraceSteps:     grace,
		MessageSamples: message,
	}
}

func (a *app) runInspect(cmd *cobra.Command, args []string) error {
	rec, err := container.Load(a.input)
	if err != nil {
		return err
	}
	info := inspect(rec)

	if a.lyapunov > 0 {
		p, err := a.newPipeline(cmd, false)
		if err != nil {
			return err
		}
		lambda, err := p.SyncExponent(rec, a.lyapunov)
		if err != nil {
			return err
		}
		info.Exponent = &lambda
	}

	out := cmd.OutOrStdout()
	if a.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	fmt.Fprintln(out, title(a.input))
	fmt.Fprintln(out, field("grace", info.Grace))
	fmt.Fprintln(out, field("duration", info.Duration))
	if info.StoredDuration != info.Duration {
		fmt.Fprintln(out, warnStyle.Render(fmt.Sprintf("stored duration %v does not match the signal", info.StoredDuration)))
	}
	fmt.Fprintln(out, field("frequency", info.Frequency))
	fmt.Fprintln(out, field("ratio", info.Ratio))
	fmt.Fprintln(out, field("epsilon", info.Epsilon))
	fmt.Fprintln(out, field("signal samples", info.Samples))
	fmt.Fprintln(out, field("grace samples", info.GraceSteps))
	fmt.Fprintln(out, field("message samples", info.MessageSamples))
	if info.Exponent != nil {
		fmt.Fprintln(out, field("lyapunov exponent", fmt.Sprintf("%.4f", *info.Exponent)))
	}
	return nil
}

func (a *app) runPlot(cmd *cobra.Command, args []string) error {
	rec, err := container.Load(a.input)
	if err != nil {
		return err
	}
	if a.from < 0 || a.from >= len(rec.Signal) {
		return fmt.Errorf("--from %d outside signal of %d samples", a.from, len(rec.Signal))
	}
	if a.count < 1 {
		return fmt.Errorf("--count must be positive, got %d", a.count)
	}

	end := min(a.from+a.count, len(rec.Signal))
	graph := asciigraph.Plot(rec.Signal[a.from:end],
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("composite signal [%d, %d)", a.from, end)),
	)
	fmt.Fprintln(cmd.OutOrStdout(), graph)
	return nil
}

func (a *app) runCompare(cmd *cobra.Command, args []string) error {
	p, err := a.newPipeline(cmd, false)
	if err != nil {
		return err
	}

	cmp, err := p.Compare(a.clipA, a.clipB)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, title("comparison"))
	fmt.Fprintln(out, field("samples", cmp.Samples))
	fmt.Fprintln(out, field("mean abs error", fmt.Sprintf("%.6g", cmp.MeanAbsError)))
	fmt.Fprintln(out, field("snr (dB)", fmt.Sprintf("%.2f", cmp.SNR)))
	fmt.Fprintln(out, field("dominant a (Hz)", fmt.Sprintf("%.1f", cmp.DominantA)))
	fmt.Fprintln(out, field("dominant b (Hz)", fmt.Sprintf("%.1f", cmp.DominantB)))
	return nil
}

func (a *app) runRuns(cmd *cobra.Command, args []string) error {
	if a.dataDir == "" {
		return fmt.Errorf("run ledger disabled (--data is empty)")
	}
	st := storage.New(a.dataDir)
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		return showRun(cmd, st, args[0])
	}

	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs recorded")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODE\tTIME\tINPUT\tOUTPUT\tSAMPLES")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n",
			r.ID, r.Mode, r.Timestamp.Local().Format(time.DateTime), r.Input, r.Output, r.Samples)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, st *storage.Store, id string) error {
	meta, err := st.Load(id)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, title(meta.ID))
	fmt.Fprintln(out, field("mode", meta.Mode))
	fmt.Fprintln(out, field("time", meta.Timestamp.Local().Format(time.DateTime)))
	fmt.Fprintln(out, field("input", meta.Input))
	fmt.Fprintln(out, field("output", meta.Output))
	fmt.Fprintln(out, field("seed", meta.Seed))
	fmt.Fprintln(out, field("grace", meta.Grace))
	fmt.Fprintln(out, field("frequency", meta.Frequency))
	fmt.Fprintln(out, field("ratio", meta.Ratio))
	fmt.Fprintln(out, field("epsilon", meta.Epsilon))
	for _, name := range []string{"r", "sigma", "b"} {
		if v, ok := meta.System[name]; ok {
			fmt.Fprintln(out, field(name, v))
		}
	}
	names := make([]string, 0, len(meta.Metrics))
	for name := range meta.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintln(out, field(name, fmt.Sprintf("%.6g", meta.Metrics[name])))
	}

	trace, err := st.LoadTrace(id)
	if err != nil {
		return err
	}
	if len(trace) > 1 {
		fmt.Fprintln(out, asciigraph.Plot(trace,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s trace (%d samples)", meta.Mode, len(trace))),
		))
	}
	return nil
}

func (a *app) runPresets(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tR\tSIGMA\tB")
	for _, name := range config.ListPresets() {
		sys := config.Presets[name]
		fmt.Fprintf(w, "%s\t%g\t%g\t%.4g\n", name, sys.R, sys.Sigma, sys.B)
	}
	return w.Flush()
}

// runConfigInit writes the effective configuration, seed included only when
// one was given, so it can be edited and passed back with --config.
func (a *app) runConfigInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(a.output); err == nil && !a.force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", a.output)
	}

	cfg, err := a.layerConfig(cmd)
	if err != nil {
		return err
	}
	if err := config.Save(a.output, cfg); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), goodStyle.Render("wrote "+a.output))
	return nil
}
