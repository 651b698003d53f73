package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/delaneyj/aexpr/aexpr"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
)

const (
	repeatsKey  = "repeats"
	scenarioKey = "scenario"
)

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Run graph scenarios and report engine counters",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    repeatsKey,
				Usage:   "Runs per scenario, the fastest is reported",
				Value:   3,
				Sources: cli.EnvVars("AEXPR_REPEATS"),
			},
			&cli.StringFlag{
				Name:    scenarioKey,
				Usage:   "Only run scenarios whose name contains this",
				Sources: cli.EnvVars("AEXPR_SCENARIO"),
			},
		},
		Action: runStats,
	}
}

type scenarioConfig struct {
	name           string  // friendly name, should be unique
	width          int     // objects per layer
	totalLayers    int     // layers including the source layer
	staticFraction float64 // fraction of expressions always reading all of their sources
	nSources       int     // objects of the previous layer each expression reads
	iterations     int64   // source writes per run
	batched        bool    // write every source inside one Batch per iteration
}

var scenarios = []scenarioConfig{
	{
		name:           "simple component",
		width:          10,
		totalLayers:    5,
		staticFraction: 1,
		nSources:       2,
		iterations:     20000,
	},
	{
		name:           "dynamic component",
		width:          10,
		totalLayers:    10,
		staticFraction: 0.75,
		nSources:       6,
		iterations:     5000,
	},
	{
		name:           "wide dense",
		width:          200,
		totalLayers:    5,
		staticFraction: 1,
		nSources:       25,
		iterations:     200,
	},
	{
		name:           "deep",
		width:          5,
		totalLayers:    200,
		staticFraction: 1,
		nSources:       3,
		iterations:     200,
	},
	{
		name:           "very dynamic",
		width:          50,
		totalLayers:    10,
		staticFraction: 0.5,
		nSources:       6,
		iterations:     500,
	},
	{
		name:           "batched wide",
		width:          100,
		totalLayers:    4,
		staticFraction: 1,
		nSources:       10,
		iterations:     200,
		batched:        true,
	},
}

type scenarioResult struct {
	duration time.Duration
	stats    aexpr.Stats
}

func runStats(ctx context.Context, cmd *cli.Command) error {
	logger, closeLog, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer closeLog()

	log.Print("Starting aexpr scenarios, please wait...")
	defer log.Print("Finished aexpr scenarios")

	repeats := int(cmd.Int(repeatsKey))
	if repeats < 1 {
		return fmt.Errorf("%s must be at least 1, got %d", repeatsKey, repeats)
	}
	filter := cmd.String(scenarioKey)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{
		"test", "size", "nSources", "static%", "nTimes",
		"time", "cells", "expressions", "evaluations",
		"notifications", "changes", "updateRate", "title",
	})

	for _, cfg := range scenarios {
		if filter != "" && !strings.Contains(cfg.name, filter) {
			continue
		}

		best := &scenarioResult{duration: time.Hour}
		for i := 0; i < repeats; i++ {
			log.Printf("Running '%s' config, iteration %d/%d %d%%", cfg.name, i+1, repeats, (i+1)*100/repeats)
			res, err := runScenario(cfg, logger)
			if err != nil {
				return fmt.Errorf("scenario %q: %w", cfg.name, err)
			}
			if res.duration < best.duration {
				best = res
			}
		}

		updateRate := float64(best.stats.Evaluations) / (float64(best.duration) / float64(time.Millisecond))

		table.Append([]string{
			cfg.name, // test
			fmt.Sprintf("%dx%d", cfg.width, cfg.totalLayers), // size
			fmt.Sprint(cfg.nSources),                         // nSources
			fmt.Sprint(cfg.staticFraction),                   // static%
			humanize.Comma(cfg.iterations),                   // nTimes
			fmt.Sprint(best.duration),                        // time
			humanize.Comma(int64(best.stats.Cells)),          // cells
			humanize.Comma(int64(best.stats.Expressions)),    // expressions
			humanize.Comma(int64(best.stats.Evaluations)),    // evaluations
			humanize.Comma(int64(best.stats.Notifications)),  // notifications
			humanize.Comma(int64(best.stats.Changes)),        // changes
			humanize.Comma(int64(updateRate)),                // updateRate
			cfg.title(),                                      // title
		})
	}
	table.Render()
	return nil
}

func (cfg scenarioConfig) title() string {
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("%dx%d %d sources", cfg.width, cfg.totalLayers, cfg.nSources))
	if cfg.staticFraction < 1 {
		sb.WriteString(" dynamic")
	}
	if cfg.batched {
		sb.WriteString(" batched")
	}
	return sb.String()
}

// runScenario builds a fresh layered graph and drives it. Every layer past the
// source layer is a row of objects, each mirrored from an expression over
// nSources objects of the layer below.
func runScenario(cfg scenarioConfig, logger *slog.Logger) (*scenarioResult, error) {
	var failures []error
	rs := aexpr.NewReactiveSystem(
		aexpr.WithLogger(logger),
		aexpr.WithOnError(func(from aexpr.Node, err error) {
			logger.Warn("scenario node failed", "node", from, "error", err)
			failures = append(failures, err)
		}),
	)
	defer rs.Reset()

	sources := make([]*aexpr.Object, cfg.width)
	for i := range sources {
		sources[i] = aexpr.NewObject(rs, map[string]any{"v": i})
	}

	random := rand.New(rand.NewSource(0))
	prev := sources
	for l := 1; l < cfg.totalLayers; l++ {
		row, err := makeScenarioRow(rs, prev, cfg, random)
		if err != nil {
			return nil, err
		}
		prev = row
	}

	start := time.Now()
	for i := int64(0); i < cfg.iterations; i++ {
		var err error
		if cfg.batched {
			err = rs.Batch(func() error {
				for dex, src := range sources {
					if err := src.Set("v", int(i)+dex); err != nil {
						return err
					}
				}
				return nil
			})
		} else {
			dex := int(i) % len(sources)
			err = sources[dex].Set("v", int(i)+dex)
		}
		if err != nil {
			return nil, err
		}
	}
	duration := time.Since(start)

	if len(failures) > 0 {
		return nil, fmt.Errorf("%d node failures, first: %w", len(failures), failures[0])
	}
	return &scenarioResult{
		duration: duration,
		stats:    rs.Stats(),
	}, nil
}

func makeScenarioRow(rs *aexpr.ReactiveSystem, below []*aexpr.Object, cfg scenarioConfig, random *rand.Rand) ([]*aexpr.Object, error) {
	row := make([]*aexpr.Object, len(below))
	for myDex := range below {
		mine := make([]*aexpr.Object, 0, cfg.nSources)
		for sourceDex := 0; sourceDex < cfg.nSources; sourceDex++ {
			mine = append(mine, below[(myDex+sourceDex)%len(below)])
		}

		var eval func() (int, error)
		if random.Float64() < cfg.staticFraction {
			eval = func() (int, error) {
				sum := 0
				for _, src := range mine {
					sum += aexpr.Prop[int](src, "v")
				}
				return sum, nil
			}
		} else {
			// dynamic: which sources are read depends on the first one
			first, tail := mine[0], mine[1:]
			eval = func() (int, error) {
				sum := aexpr.Prop[int](first, "v")
				shouldDrop := sum&0x1 > 0
				dropDex := 0
				if len(tail) > 0 {
					dropDex = sum % len(tail)
				}
				for i, src := range tail {
					if shouldDrop && i == dropDex {
						continue
					}
					sum += aexpr.Prop[int](src, "v")
				}
				return sum, nil
			}
		}

		e, err := aexpr.Watch(rs, eval)
		if err != nil {
			return nil, err
		}
		out := aexpr.NewObject(rs, map[string]any{"v": e.Value()})
		e.OnChange(func(v int) {
			if err := out.Set("v", v); err != nil {
				panic(err)
			}
		})
		row[myDex] = out
	}
	return row, nil
}
