// Package optim sweeps receiver coefficients over a grid and scores how well
// each candidate synchronizes to a recorded signal.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/san-kum/chaoscrypt/internal/dynamo"
	"github.com/san-kum/chaoscrypt/internal/masking"
	"github.com/san-kum/chaoscrypt/internal/metrics"
	"github.com/san-kum/chaoscrypt/internal/physics"
)

type Grid struct {
	names  []string
	ranges [][]float64
}

func NewGrid(names []string, ranges [][]float64) (*Grid, error) {
	if len(names) != len(ranges) {
		return nil, fmt.Errorf("%d parameter names for %d ranges", len(names), len(ranges))
	}
	probe := physics.DefaultParams()
	for i, name := range names {
		if err := probe.Set(name, 0); err != nil {
			return nil, err
		}
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("empty range for %s", name)
		}
	}
	return &Grid{names: names, ranges: ranges}, nil
}

// Points expands the grid around base: every combination of the swept
// values, with unswept coefficients taken from base.
func (g *Grid) Points(base physics.Params) []physics.Params {
	points := []physics.Params{base}
	for depth, name := range g.names {
		next := make([]physics.Params, 0, len(points)*len(g.ranges[depth]))
		for _, p := range points {
			for _, v := range g.ranges[depth] {
				q := p
				_ = q.Set(name, v)
				next = append(next, q)
			}
		}
		points = next
	}
	return points
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

type Point struct {
	Params   physics.Params
	Residual float64 // RMS residual over the scoring window; +Inf if the receiver diverged
}

// Sweep runs one receiver per candidate over the grace prefix of signal and
// scores it by the RMS residual over the last time unit of grace. Results are
// in the order of candidates.
func Sweep(ctx context.Context, signal []float64, mc masking.Config, candidates []physics.Params, workers int) ([]Point, error) {
	if err := mc.Validate(); err != nil {
		return nil, err
	}
	grace := min(mc.GraceSteps(), len(signal))
	if grace == 0 {
		return nil, fmt.Errorf("%w: signal has no grace prefix to score", masking.ErrInvalidConfig)
	}
	from := max(grace-int(mc.Frequency), 0)
	prefix := signal[:grace]

	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, len(candidates))

	points := make([]Point, len(candidates))
	errs := make([]error, len(candidates))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				points[idx], errs[idx] = score(ctx, prefix, mc, candidates[idx], from)
			}
		}()
	}

	for i := range candidates {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return points, nil
}

func score(ctx context.Context, prefix []float64, mc masking.Config, p physics.Params, from int) (Point, error) {
	mc.Params = p
	rx := masking.NewReceiver(mc)
	window := metrics.NewSyncResidual(from, len(prefix))
	rx.AddMetric(window)

	if _, err := rx.Run(ctx, prefix); err != nil {
		if errors.Is(err, dynamo.ErrCanceled) {
			return Point{}, err
		}
		return Point{Params: p, Residual: math.Inf(1)}, nil
	}
	return Point{Params: p, Residual: window.Value()}, nil
}

// Best returns the candidate with the smallest residual.
func Best(points []Point) (Point, bool) {
	if len(points) == 0 {
		return Point{}, false
	}
	best := points[0]
	for _, p := range points[1:] {
		if p.Residual < best.Residual {
			best = p
		}
	}
	return best, true
}
