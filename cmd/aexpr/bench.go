package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/delaneyj/aexpr/aexpr"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"
)

const (
	widthKey      = "width"
	heightKey     = "height"
	iterationsKey = "iterations"
)

func benchCommand() *cli.Command {
	return &cli.Command{
		Name:  "bench",
		Usage: "Measure write to notification latency through chains of expressions",
		Flags: []cli.Flag{
			&cli.IntSliceFlag{
				Name:    widthKey,
				Usage:   "Number of parallel chains hanging off the source",
				Value:   []int64{1, 10, 100},
				Sources: cli.EnvVars("AEXPR_WIDTH"),
			},
			&cli.IntSliceFlag{
				Name:    heightKey,
				Usage:   "Number of expressions in each chain",
				Value:   []int64{1, 10, 100},
				Sources: cli.EnvVars("AEXPR_HEIGHT"),
			},
			&cli.IntFlag{
				Name:    iterationsKey,
				Usage:   "Writes to the source per configuration",
				Value:   100,
				Sources: cli.EnvVars("AEXPR_ITERATIONS"),
			},
		},
		Action: runBench,
	}
}

func runBench(ctx context.Context, cmd *cli.Command) error {
	logger, closeLog, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer closeLog()

	iters := int(cmd.Int(iterationsKey))
	if iters < 1 {
		return fmt.Errorf("%s must be at least 1, got %d", iterationsKey, iters)
	}

	rs := aexpr.NewReactiveSystem(
		aexpr.WithLogger(logger),
		aexpr.WithOnError(func(from aexpr.Node, err error) {
			logger.Error("bench node failed", "node", from, "error", err)
		}),
	)

	log.Printf("warming up")
	if _, err := benchmarkChains(rs, []int64{10}, []int64{10}, iters); err != nil {
		return fmt.Errorf("warm up: %w", err)
	}

	tbl, err := benchmarkChains(rs, cmd.IntSlice(widthKey), cmd.IntSlice(heightKey), iters)
	if err != nil {
		return err
	}
	tbl.Render()
	return nil
}

// benchmarkChains builds w chains of h expressions over one source object. Each
// expression reads the previous link and its observer writes its own object,
// so a write to the source travels the whole chain before Set returns.
func benchmarkChains(rs *aexpr.ReactiveSystem, ww, hh []int64, iters int) (table.Writer, error) {
	tbl := table.NewWriter()
	tbl.SetTitle("Active Expressions")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})

	next := func(prev *aexpr.Object) (int, error) {
		return aexpr.Prop[int](prev, "v") + 1, nil
	}

	for _, w := range ww {
		for _, h := range hh {
			rs.Reset()
			tach := tachymeter.New(&tachymeter.Config{Size: iters})

			src := aexpr.NewObject(rs, map[string]any{"v": 1})
			for i := int64(0); i < w; i++ {
				last := src
				for j := int64(0); j < h; j++ {
					link := aexpr.NewObject(rs, nil)
					e, err := aexpr.Watch1(rs, last, next)
					if err != nil {
						return nil, err
					}
					// nothing depends on link yet, this is a plain store
					if err := link.Set("v", e.Value()); err != nil {
						return nil, err
					}
					e.OnChange(func(v int) {
						// a panicking observer comes back out of src.Update
						// as an ObserverError
						if err := link.Set("v", v); err != nil {
							panic(err)
						}
					})
					last = link
				}

				tail := last
				aexpr.MustWatch(rs, func() int {
					return aexpr.Prop[int](tail, "v")
				})
			}

			for i := 0; i < iters; i++ {
				start := time.Now()
				err := src.Update("v", func(v any) any {
					return v.(int) + 1
				})
				tach.AddTime(time.Since(start))
				if err != nil {
					return nil, fmt.Errorf("propagate %d * %d: %w", w, h, err)
				}
			}

			calc := tach.Calc()
			tbl.AppendRow(table.Row{
				fmt.Sprintf("propagate: %d * %d", w, h),
				calc.Time.Avg,
				calc.Time.Min,
				calc.Time.P75,
				calc.Time.P99,
				calc.Time.Max,
			})
		}
	}
	rs.Reset()

	return tbl, nil
}
