package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/chaoscrypt/internal/container"
	"github.com/san-kum/chaoscrypt/internal/masking"
	"github.com/san-kum/chaoscrypt/internal/optim"
)

// parseRange reads "name=lo:hi:n".
func parseRange(s string) (string, []float64, error) {
	name, spec, ok := strings.Cut(s, "=")
	if !ok {
		return "", nil, fmt.Errorf("invalid --range %q: want name=lo:hi:n", s)
	}
	parts := strings.Split(spec, ":")
	if len(parts) != 3 {
		return "", nil, fmt.Errorf("invalid --range %q: want name=lo:hi:n", s)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return "", nil, fmt.Errorf("invalid --range %q: %w", s, err)
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", nil, fmt.Errorf("invalid --range %q: %w", s, err)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 1 {
		return "", nil, fmt.Errorf("invalid --range %q: count must be a positive integer", s)
	}
	return strings.TrimSpace(name), optim.Linspace(lo, hi, n), nil
}

func (a *app) runSweep(cmd *cobra.Command, args []string) error {
	names := make([]string, 0, len(a.ranges))
	ranges := make([][]float64, 0, len(a.ranges))
	for _, r := range a.ranges {
		name, values, err := parseRange(r)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}
	grid, err := optim.NewGrid(names, ranges)
	if err != nil {
		return err
	}

	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}
	rec, err := container.Load(a.input)
	if err != nil {
		return err
	}

	mc := masking.Config{
		Grace:     rec.Grace,
		Frequency: rec.Frequency,
		Ratio:     rec.Ratio,
		Epsilon:   rec.Epsilon,
		Params:    cfg.Params(),
		Seed:      cfg.Seed,
	}
	points, err := optim.Sweep(cmd.Context(), rec.Signal, mc, grid.Points(cfg.Params()), a.workers)
	if err != nil {
		return err
	}
	best, _ := optim.Best(points)

	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "R\tSIGMA\tB\tRESIDUAL\t")
	for _, p := range points {
		mark := ""
		if p == best {
			mark = "best"
		}
		fmt.Fprintf(w, "%g\t%g\t%.4g\t%.4g\t%s\n", p.Params.R, p.Params.Sigma, p.Params.B, p.Residual, mark)
	}
	return w.Flush()
}
