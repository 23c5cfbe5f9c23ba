package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cineverse/ambientfx/internal/headless"
	"github.com/cineverse/ambientfx/internal/particles"
)

type runStats struct {
	runIndex int
	seed     int64
	frames   int

	fields   []headless.FieldStats
	clamps   int
	degraded int
}

type aggregateStats struct {
	runs        int
	respawns    uint64
	nan         int
	outOfBounds int
	clamps      int
	degraded    int
	meanOpacity float64
}

var (
	reportRuns     int
	reportFrames   int
	reportSeedBase int64
	reportSeedStep int64
	reportWidth    int
	reportHeight   int
	reportPresets  []string
	reportPNG      string
	reportCopy     bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run headless simulations and print invariant statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		if reportRuns <= 0 {
			return errors.New("--runs must be > 0")
		}
		if reportFrames <= 0 {
			return errors.New("--frames must be > 0")
		}
		cfgs, err := reportLayers(cmd)
		if err != nil {
			return err
		}

		var out strings.Builder
		fmt.Fprintf(&out, "=== Headless Particle Report ===\n")
		fmt.Fprintf(&out, "layers=%d runs=%d frames=%d size=%dx%d seed_base=%d seed_step=%d\n\n",
			len(cfgs), reportRuns, reportFrames, reportWidth, reportHeight, reportSeedBase, reportSeedStep)

		all := make([]runStats, 0, reportRuns)
		var last *headless.Sim
		for i := 0; i < reportRuns; i++ {
			seed := reportSeedBase + int64(i)*reportSeedStep
			rs, sim := runScenario(i+1, seed, reportFrames, reportWidth, reportHeight, cfgs)
			all = append(all, rs)
			printRun(&out, rs)
			last = sim
		}
		agg := aggregate(all)
		printAggregate(&out, agg)

		if _, err := io.WriteString(cmd.OutOrStdout(), out.String()); err != nil {
			return err
		}
		if reportPNG != "" && last != nil {
			if err := writeSnapshot(reportPNG, last); err != nil {
				return err
			}
			logger.Info("snapshot written", zap.String("path", reportPNG))
		}
		if reportCopy {
			if err := clipboard.WriteAll(out.String()); err != nil {
				logger.Warn("clipboard copy failed", zap.Error(err))
			}
		}
		if v := invariantViolations(agg); len(v) > 0 {
			return fmt.Errorf("invariant violations: %s", strings.Join(v, ", "))
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().IntVar(&reportRuns, "runs", 5, "number of headless runs")
	reportCmd.Flags().IntVar(&reportFrames, "frames", 3600, "frames per run")
	reportCmd.Flags().Int64Var(&reportSeedBase, "seed-base", 42, "base RNG seed for run 1")
	reportCmd.Flags().Int64Var(&reportSeedStep, "seed-step", 1, "seed increment between runs")
	reportCmd.Flags().IntVar(&reportWidth, "width", 1280, "surface width")
	reportCmd.Flags().IntVar(&reportHeight, "height", 720, "surface height")
	reportCmd.Flags().StringSliceVar(&reportPresets, "preset", nil, "preset layers bottom first (overrides --config)")
	reportCmd.Flags().StringVar(&reportPNG, "png", "", "write the last run's final frame to this PNG file")
	reportCmd.Flags().BoolVar(&reportCopy, "copy", false, "copy the report to the clipboard")
}

// reportLayers resolves --preset when given, else the config file.
func reportLayers(cmd *cobra.Command) ([]particles.Config, error) {
	if !cmd.Flags().Changed("preset") {
		return loadLayers(configPath)
	}
	return presetLayers(reportPresets)
}

func presetLayers(names []string) ([]particles.Config, error) {
	cfgs := make([]particles.Config, 0, len(names))
	for _, name := range names {
		cfg, ok := particles.Preset(name)
		if !ok {
			return nil, fmt.Errorf("unsupported preset %q (supported: ambient, stars)", name)
		}
		cfgs = append(cfgs, cfg)
	}
	return cfgs, nil
}

func runScenario(runIndex int, seed int64, frames, w, h int, cfgs []particles.Config) (runStats, *headless.Sim) {
	opts := []headless.Option{
		headless.WithSurfaceSize(w, h),
		headless.WithSeed(seed),
		headless.WithLogger(logger),
	}
	for _, c := range cfgs {
		opts = append(opts, headless.WithConfig(c))
	}
	sim := headless.New(opts...)
	sim.RunFrames(frames)
	rs := runStats{
		runIndex: runIndex,
		seed:     seed,
		frames:   sim.Frame(),
		fields:   sim.Snapshot(),
		clamps:   sim.Events.Count(particles.CategoryConfig, particles.KeyClamp),
		degraded: sim.Events.Count(particles.CategoryLifecycle, particles.KeyDegraded),
	}
	sim.Close()
	return rs, sim
}

func printRun(w io.Writer, rs runStats) {
	fmt.Fprintf(w, "--- Run %d (seed=%d frames=%d) ---\n", rs.runIndex, rs.seed, rs.frames)
	if rs.clamps > 0 || rs.degraded > 0 {
		fmt.Fprintf(w, "config_clamps=%d degraded_fields=%d\n", rs.clamps, rs.degraded)
	}
	for _, f := range rs.fields {
		fmt.Fprintf(w, "%-8s count=%d frames=%d respawns=%d visible=%d mean_opacity=%.3f nan=%d out_of_bounds=%d\n",
			f.Class, f.Count, f.Frames, f.Respawns, f.Visible, f.MeanOpacity, f.NaN, f.OutOfBounds)
	}
	fmt.Fprintln(w)
}

func aggregate(all []runStats) aggregateStats {
	agg := aggregateStats{runs: len(all)}
	var opacitySum float64
	var opacityN int
	for _, rs := range all {
		agg.clamps += rs.clamps
		agg.degraded += rs.degraded
		for _, f := range rs.fields {
			agg.respawns += f.Respawns
			agg.nan += f.NaN
			agg.outOfBounds += f.OutOfBounds
			if f.Count > 0 {
				opacitySum += f.MeanOpacity
				opacityN++
			}
		}
	}
	if opacityN > 0 {
		agg.meanOpacity = opacitySum / float64(opacityN)
	}
	return agg
}

func printAggregate(w io.Writer, agg aggregateStats) {
	fmt.Fprintf(w, "=== Aggregate (%d runs) ===\n", agg.runs)
	fmt.Fprintf(w, "respawns=%d nan=%d out_of_bounds=%d config_clamps=%d degraded_fields=%d mean_opacity=%.3f\n",
		agg.respawns, agg.nan, agg.outOfBounds, agg.clamps, agg.degraded, agg.meanOpacity)
}

// invariantViolations lists broken simulator invariants, if any.
func invariantViolations(agg aggregateStats) []string {
	var out []string
	if agg.nan > 0 {
		out = append(out, fmt.Sprintf("nan_positions=%d", agg.nan))
	}
	if agg.outOfBounds > 0 {
		out = append(out, fmt.Sprintf("out_of_bounds=%d", agg.outOfBounds))
	}
	return out
}

func writeSnapshot(path string, sim *headless.Sim) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	if err := sim.Surface.WritePNG(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
