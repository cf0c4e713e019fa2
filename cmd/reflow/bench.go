package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/reflow-dev/reflow/pkg/reflow"
)

func benchCmd() *cobra.Command {
	var keys int
	var writes int
	var effects int

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Stress the reactivity engine and report throughput",
		Long: `Run a synthetic workload against a single runtime: a key-value
store observed by deferred effects, hammered with writes, flushed
once per simulated turn. Reports write and effect throughput.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if keys < 1 || writes < 1 || effects < 1 {
				return fmt.Errorf("keys, writes and effects must all be positive")
			}
			runBench(keys, writes, effects)
			return nil
		},
	}

	cmd.Flags().IntVar(&keys, "keys", 100, "Number of store keys")
	cmd.Flags().IntVar(&writes, "writes", 100000, "Number of writes to perform")
	cmd.Flags().IntVar(&effects, "effects", 100, "Number of observing effects")

	return cmd
}

func runBench(keys, writes, effects int) {
	rt := reflow.NewRuntime()
	store := reflow.NewMap(rt, make(map[int]int, keys))
	for i := 0; i < keys; i++ {
		store.Set(i, 0)
	}

	// Each effect watches one key, round-robin. Deferred so writes
	// within a turn coalesce the way a real host loop would see them.
	for i := 0; i < effects; i++ {
		key := i % keys
		rt.NewEffect(func() any {
			store.Get(key)
			return nil
		}, reflow.Deferred())
	}

	const turnSize = 64

	start := time.Now()
	for i := 0; i < writes; i++ {
		store.Update(i%keys, func(v int) int { return v + 1 })
		if i%turnSize == turnSize-1 {
			rt.Queue().Flush()
		}
	}
	rt.Queue().Flush()
	elapsed := time.Since(start)

	stats := rt.Stats()
	fmt.Printf("writes:        %d in %v (%.0f/s)\n",
		writes, elapsed.Round(time.Millisecond), float64(writes)/elapsed.Seconds())
	fmt.Printf("effect runs:   %d (%.0f/s)\n",
		stats.EffectRuns, float64(stats.EffectRuns)/elapsed.Seconds())
	fmt.Printf("triggers:      %d\n", stats.Triggers)
	fmt.Printf("flushes:       %d, jobs flushed: %d\n", stats.Flushes, stats.FlushedJobs)
}
