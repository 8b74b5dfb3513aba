package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/squeeze/internal/manifest"
)

var statsCmd = &cobra.Command{
	Use:   "stats <out_dir_or_manifest>",
	Short: "Display statistics for a batch output directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	m, err := manifest.ReadJSON(args[0])
	if err != nil {
		return err
	}
	printStats(cmd.OutOrStdout(), m)
	return nil
}

func printStats(w io.Writer, m *manifest.Manifest) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Manifest version: %d\n", m.Version)
	fmt.Fprintf(w, "  Generated:        %s\n", m.GeneratedAt)
	fmt.Fprintf(w, "  Profile:          %s\n", m.Profile)
	if m.BuildInfo != nil {
		fmt.Fprintf(w, "  Workers:          %d\n", m.BuildInfo.Workers)
		fmt.Fprintf(w, "  Quality:          %d\n", m.BuildInfo.Quality)
		if m.BuildInfo.WebPLossy {
			fmt.Fprintln(w, "  WebP:             lossy")
		}
	}
	fmt.Fprintln(w)

	s := m.Stats
	fmt.Fprintf(w, "  Total assets:     %d\n", s.TotalAssets)
	fmt.Fprintf(w, "  Total outputs:    %d\n", s.TotalOutputs)
	fmt.Fprintf(w, "  Input size:       %s\n", formatBytes(s.TotalInputBytes))
	fmt.Fprintf(w, "  Output size:      %s\n", formatBytes(s.TotalOutputBytes))
	if s.TotalInputBytes > 0 {
		ratio := float64(s.TotalOutputBytes) / float64(s.TotalInputBytes) * 100
		fmt.Fprintf(w, "  Compression:      %.1f%% of original\n", ratio)
	}
	if s.SkippedRegress > 0 {
		fmt.Fprintf(w, "  Skipped:          %d outputs\n", s.SkippedRegress)
	}
	if s.Failed > 0 {
		fmt.Fprintf(w, "  Failed sources:   %d\n", s.Failed)
	}
	if s.FailedOutputs > 0 {
		fmt.Fprintf(w, "  Failed outputs:   %d\n", s.FailedOutputs)
	}
	fmt.Fprintln(w)

	// Per-target breakdown.
	type targetStat struct {
		count    int
		bytes    int64
		ratioSum float64
	}
	targetStats := map[string]targetStat{}
	for _, a := range m.Assets {
		for _, o := range a.Outputs {
			ts := targetStats[o.Target]
			ts.count++
			ts.bytes += o.Size
			ts.ratioSum += o.Ratio
			targetStats[o.Target] = ts
		}
	}

	fmt.Fprintln(w, "  Target breakdown:")
	for _, t := range []string{"webp", "jpeg", "png"} {
		if ts, ok := targetStats[t]; ok {
			fmt.Fprintf(w, "    %-6s  %4d files  %10s  avg ratio %.2fx\n",
				t, ts.count, formatBytes(ts.bytes), ts.ratioSum/float64(ts.count))
		}
	}
	fmt.Fprintln(w)

	// Tuned quality breakdown for lossy outputs.
	qualityStats := map[int]int{}
	for _, a := range m.Assets {
		for _, o := range a.Outputs {
			if o.Quality > 0 {
				qualityStats[o.Quality]++
			}
		}
	}
	if len(qualityStats) > 0 {
		var qs []int
		for q := range qualityStats {
			qs = append(qs, q)
		}
		sort.Ints(qs)
		fmt.Fprintln(w, "  Quality breakdown:")
		for _, q := range qs {
			fmt.Fprintf(w, "    q%-3d  %4d outputs\n", q, qualityStats[q])
		}
		fmt.Fprintln(w)
	}

	// Warnings.
	var warnings []string
	for key, a := range m.Assets {
		if len(a.Outputs) == 0 {
			warnings = append(warnings, fmt.Sprintf("asset %q has no outputs", key))
		}
		if a.Original.Format == "Unknown" {
			warnings = append(warnings, fmt.Sprintf("asset %q has an unrecognized signature", key))
		}
	}
	if len(warnings) > 0 {
		sort.Strings(warnings)
		fmt.Fprintf(w, "  Warnings (%d):\n", len(warnings))
		for _, warn := range warnings {
			fmt.Fprintf(w, "    ⚠ %s\n", warn)
		}
		fmt.Fprintln(w)
	}
}
