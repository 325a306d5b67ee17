// Package montecarlo repeats independent simulation rounds and averages their
// checkpoint series.
package montecarlo

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/inference-sim/twincity/sim"
	"github.com/inference-sim/twincity/sim/trace"
)

// Result holds the outcome of a Monte Carlo run.
type Result struct {
	Key        sim.SimulationKey
	Scenario   sim.Scenario
	Mean       sim.Series   // elementwise average over rounds
	Rounds     []sim.Series // per-round series, indexed by round
	Traces     []*trace.SimulationTrace
	PairChecks int64 // agent pairs examined across all rounds
	Elapsed    time.Duration
}

// Driver runs cfg.Rounds independent rounds, each on its own random stream
// derived from cfg.Seed, and averages them.
type Driver struct {
	cfg      sim.Config
	traceCfg trace.TraceConfig
	rng      *sim.PartitionedRNG
	hasRun   bool
}

// NewDriver validates cfg and prepares the per-round streams.
func NewDriver(cfg sim.Config, traceCfg trace.TraceConfig) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if traceCfg.Level != "" && !trace.IsValidTraceLevel(string(traceCfg.Level)) {
		return nil, fmt.Errorf("%w: unknown trace level %q", sim.ErrInvalidConfig, traceCfg.Level)
	}
	return &Driver{
		cfg:      cfg,
		traceCfg: traceCfg,
		rng:      sim.NewPartitionedRNG(sim.NewSimulationKey(cfg.Seed)),
	}, nil
}

// Workers returns the number of rounds allowed to run at once.
func (d *Driver) Workers() int {
	if d.cfg.Workers > 0 {
		return d.cfg.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Run executes every round and returns the averaged series.
// Rounds run concurrently on up to Workers goroutines; results are combined
// in round-index order, so the output does not depend on the worker count.
// The first failing round cancels the rest and its error is returned.
// Panics if called more than once.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	if d.hasRun {
		panic("Driver.Run() called more than once")
	}
	d.hasRun = true

	n := d.cfg.Rounds
	streams := make([]*rand.Rand, n)
	for i := range streams {
		streams[i] = d.rng.ForRound(i)
	}

	res := &Result{
		Key:      d.rng.Key(),
		Scenario: d.cfg.Scenario,
		Rounds:   make([]sim.Series, n),
	}
	pairs := make([]int64, n)
	if d.traceCfg.Enabled() {
		res.Traces = make([]*trace.SimulationTrace, n)
	}

	logrus.Infof("[montecarlo] Starting %d rounds of %s on %d workers (seed %d)", n, d.cfg.Scenario, d.Workers(), d.cfg.Seed)
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.Workers())
	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var tr *trace.SimulationTrace
			if res.Traces != nil {
				tr = trace.NewSimulationTrace(d.traceCfg, i)
				res.Traces[i] = tr
			}
			round, err := sim.NewRound(i, d.cfg, streams[i], tr)
			if err != nil {
				return err
			}
			series, err := round.Run()
			if err != nil {
				return err
			}
			res.Rounds[i] = series
			pairs[i] = round.PairChecks()
			logrus.Debugf("[montecarlo] Round %03d finished", i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mean, err := sim.AverageSeries(res.Rounds)
	if err != nil {
		return nil, fmt.Errorf("averaging rounds: %w", err)
	}
	res.Mean = mean
	for _, p := range pairs {
		res.PairChecks += p
	}
	res.Elapsed = time.Since(start)
	logrus.Infof("[montecarlo] Finished %d rounds in %s", n, res.Elapsed)
	return res, nil
}

// ScenarioResult pairs a scenario with its Monte Carlo result.
type ScenarioResult struct {
	Scenario sim.Scenario
	Result   *Result
}

// RunScenarios runs cfg once per scenario with the same seed, in the order given.
func RunScenarios(ctx context.Context, cfg sim.Config, traceCfg trace.TraceConfig, scenarios []sim.Scenario) ([]ScenarioResult, error) {
	out := make([]ScenarioResult, 0, len(scenarios))
	for _, s := range scenarios {
		c := cfg
		c.Scenario = s
		d, err := NewDriver(c, traceCfg)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", s, err)
		}
		res, err := d.Run(ctx)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", s, err)
		}
		out = append(out, ScenarioResult{Scenario: s, Result: res})
	}
	return out, nil
}
