// Package sweep prices one contract across many step counts and measures convergence
// against the closed-form price.
package sweep

import (
	"context"
	"fmt"
	"io"
	"math"
	"runtime"
	"sync/atomic"

	"github.com/bcdannyboy/qfin/models"
	"github.com/shirou/gopsutil/cpu"
	mpb "github.com/vbauerster/mpb/v7"
	"github.com/vbauerster/mpb/v7/decor"
	"golang.org/x/sync/errgroup"
)

const jobBatchSize = 64

// Point is one step count's result. Error is European minus Reference.
type Point struct {
	Steps         int     `json:"steps"`
	European      float64 `json:"european"`
	American      float64 `json:"american"`
	Premium       float64 `json:"early_exercise_premium"`
	Reference     float64 `json:"reference"`
	Error         float64 `json:"error"`
	EarlyExercise bool    `json:"early_exercise"`
}

type Options struct {
	// Workers defaults to the number of logical CPUs.
	Workers int
	// Progress receives a progress bar when non-nil.
	Progress io.Writer
}

type job struct {
	index int
	steps int
}

// DefaultWorkers reports the logical CPU count, falling back to the runtime's view.
func DefaultWorkers() int {
	n, err := cpu.Counts(true)
	if err != nil || n < 1 {
		return runtime.NumCPU()
	}
	return n
}

// Range returns from, from+step, ... up to and including to.
func Range(from, to, step int) ([]int, error) {
	if from < 1 || to < from || step < 1 {
		return nil, fmt.Errorf("%w: bad step range %d..%d by %d", models.ErrInvalidParameters, from, to, step)
	}
	var out []int
	for n := from; n <= to; n += step {
		out = append(out, n)
	}
	return out, nil
}

func reference(p models.LatticeParams) (float64, error) {
	if p.Underlying == models.Futures {
		r, err := models.Black76(p.Spot, p.Strike, p.Maturity, p.Rate, p.Volatility, p.Type)
		return r.Price, err
	}
	r, err := models.BlackScholesMerton(p.Spot, p.Strike, p.Maturity, p.Rate, p.Yield, p.Volatility, p.Type)
	return r.Price, err
}

// Run prices base at every step count in steps. Points come back in the order of steps.
func Run(ctx context.Context, base models.LatticeParams, steps []int, opts Options) ([]Point, error) {
	if base.Payoff != nil {
		return nil, fmt.Errorf("%w: sweeps need a call or put, not a custom payoff", models.ErrInvalidParameters)
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("%w: no step counts", models.ErrInvalidParameters)
	}
	ref, err := reference(base)
	if err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	if workers > len(steps) {
		workers = len(steps)
	}

	var p *mpb.Progress
	var bar *mpb.Bar
	if opts.Progress != nil {
		p = mpb.NewWithContext(ctx, mpb.WithWidth(64), mpb.WithOutput(opts.Progress))
		bar = p.AddBar(int64(len(steps)),
			mpb.PrependDecorators(
				decor.Name("Steps"),
				decor.Percentage(decor.WCSyncSpace),
			),
			mpb.AppendDecorators(
				decor.CountersNoUnit("(%d / %d)", decor.WCSyncSpace),
			),
		)
	}

	points, priced, err := price(ctx, base, ref, steps, workers, bar)
	if p != nil {
		if err != nil {
			bar.Abort(false)
		}
		p.Wait()
	}
	if err != nil {
		return nil, err
	}
	if priced != len(steps) {
		return nil, fmt.Errorf("sweep finished %d of %d step counts", priced, len(steps))
	}
	return points, nil
}

// price feeds steps to the workers. The first failure cancels the group so the remaining
// step counts are skipped.
func price(ctx context.Context, base models.LatticeParams, ref float64, steps []int, workers int, bar *mpb.Bar) ([]Point, int, error) {
	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan job, jobBatchSize)
	points := make([]Point, len(steps))
	var processed int64

	g.Go(func() error {
		defer close(jobs)
		for i, n := range steps {
			select {
			case jobs <- job{index: i, steps: n}:
			case <-gctx.Done():
				return nil
			}
		}
		return nil
	})
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			return worker(gctx, base, ref, jobs, points, &processed, bar)
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	return points, int(atomic.LoadInt64(&processed)), err
}

// worker writes each result into its own slot of points.
func worker(ctx context.Context, base models.LatticeParams, ref float64, jobs <-chan job, points []Point, processed *int64, bar *mpb.Bar) error {
	for j := range jobs {
		if err := ctx.Err(); err != nil {
			return err
		}
		params := base
		params.Steps = j.steps
		cmp, err := models.CompareStyles(params)
		if err != nil {
			return fmt.Errorf("n=%d: %w", j.steps, err)
		}
		points[j.index] = Point{
			Steps:         j.steps,
			European:      cmp.European.Value,
			American:      cmp.American.Value,
			Premium:       cmp.Premium,
			Reference:     ref,
			Error:         cmp.European.Value - ref,
			EarlyExercise: cmp.American.EarlyExercise,
		}
		atomic.AddInt64(processed, 1)
		if bar != nil {
			bar.Increment()
		}
	}
	return nil
}

// MaxAbsError is the largest |Error| over points, or NaN when there are none.
func MaxAbsError(points []Point) float64 {
	if len(points) == 0 {
		return math.NaN()
	}
	var worst float64
	for _, pt := range points {
		worst = math.Max(worst, math.Abs(pt.Error))
	}
	return worst
}
