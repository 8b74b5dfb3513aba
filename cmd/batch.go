package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/squeeze/internal/manifest"
	"github.com/AnyUserName/squeeze/internal/pipeline"
	"github.com/AnyUserName/squeeze/internal/profile"
)

var (
	batchOutDir    string
	batchProfile   string
	batchWorkers   int
	batchQuality   int
	batchNoRegress bool
	batchLossy     bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <input_dir>",
	Short: "Convert a directory of images and write a manifest",
	Long: `Scans the input directory for images (png, jpg, jpeg, webp, gif, bmp, tiff),
converts each one to the targets of the chosen profile and writes a manifest.

Profiles: ` + strings.Join(profile.Names(), ", ") + `

Output filenames are content-addressed: <key>.<hash>.<ext>`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchOutDir, "out", "o", "./squeeze_out", "output directory")
	batchCmd.Flags().StringVarP(&batchProfile, "profile", "p", "", "processing profile (default from config, then web)")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "parallel workers (0 = config or NumCPU)")
	batchCmd.Flags().IntVarP(&batchQuality, "quality", "q", 0, "requested quality (0 = config or profile default)")
	batchCmd.Flags().BoolVar(&batchNoRegress, "no-regress-size", true, "skip outputs not smaller than the source file")
	batchCmd.Flags().BoolVar(&batchLossy, "lossy", false, "encode lossy WebP at the tuned quality")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	start := time.Now()

	absInput, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolve input path: %w", err)
	}
	absOutput, err := filepath.Abs(batchOutDir)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	name := batchProfile
	if name == "" {
		name = cfg.Profile
	}
	prof := profile.Get(name).WithQuality(requestedQuality(batchQuality))

	workers := batchWorkers
	if workers <= 0 {
		workers = cfg.Workers
	}
	noRegress := batchNoRegress
	if !cmd.Flags().Changed("no-regress-size") {
		noRegress = cfg.NoRegressSize
	}

	logVerbose("input:   %s", absInput)
	logVerbose("output:  %s", absOutput)
	logVerbose("profile: %s (targets=%v, quality=%d, auto=%v)", prof.Name, prof.Targets, prof.Quality, prof.Auto)

	if err := os.MkdirAll(absOutput, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	p := pipeline.New(pipeline.Config{
		InputDir:      absInput,
		OutputDir:     absOutput,
		Profile:       prof,
		Workers:       workers,
		NoRegressSize: noRegress,
		WebPLossy:     batchLossy || cfg.WebPLossy,
		Logger:        log,
	})

	m, err := p.Run()
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	manifestPath := filepath.Join(absOutput, manifest.FileName)
	if err := manifest.WriteJSON(m, manifestPath); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	printBatchReport(cmd.OutOrStdout(), m, time.Since(start))
	return nil
}

func printBatchReport(w io.Writer, m *manifest.Manifest, elapsed time.Duration) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  squeeze batch complete")
	fmt.Fprintln(w)

	s := m.Stats
	fmt.Fprintf(w, "  Assets:      %d\n", s.TotalAssets)
	fmt.Fprintf(w, "  Outputs:     %d\n", s.TotalOutputs)
	fmt.Fprintf(w, "  Input size:  %s\n", formatBytes(s.TotalInputBytes))
	fmt.Fprintf(w, "  Output size: %s\n", formatBytes(s.TotalOutputBytes))
	if s.TotalInputBytes > 0 {
		fmt.Fprintf(w, "  Ratio:       %.1f%% of original\n", float64(s.TotalOutputBytes)/float64(s.TotalInputBytes)*100)
	}
	if s.SkippedRegress > 0 {
		fmt.Fprintf(w, "  Skipped:     %d outputs (not smaller than original)\n", s.SkippedRegress)
	}
	if s.Failed > 0 {
		fmt.Fprintf(w, "  Failed:      %d sources\n", s.Failed)
	}
	if s.FailedOutputs > 0 {
		fmt.Fprintf(w, "  Failed:      %d outputs\n", s.FailedOutputs)
	}
	fmt.Fprintf(w, "  Time:        %s\n", elapsed.Round(time.Millisecond))
	if m.BuildInfo != nil {
		fmt.Fprintf(w, "  Workers:     %d\n", m.BuildInfo.Workers)
	}
	fmt.Fprintln(w)

	// Top 10 heaviest assets.
	if len(m.Assets) > 0 {
		type assetSize struct {
			key       string
			inputSize int64
			smallest  int64
		}
		var items []assetSize
		for key, a := range m.Assets {
			smallest := a.Original.Size
			for _, o := range a.Outputs {
				smallest = min(smallest, o.Size)
			}
			items = append(items, assetSize{key, a.Original.Size, smallest})
		}
		sort.Slice(items, func(i, j int) bool {
			if items[i].inputSize != items[j].inputSize {
				return items[i].inputSize > items[j].inputSize
			}
			return items[i].key < items[j].key
		})
		n := min(len(items), 10)
		fmt.Fprintf(w, "  Top %d heaviest (original → smallest output):\n", n)
		for _, it := range items[:n] {
			saved := float64(0)
			if it.inputSize > 0 {
				saved = (1 - float64(it.smallest)/float64(it.inputSize)) * 100
			}
			fmt.Fprintf(w, "    %-40s %8s → %8s  (−%.0f%%)\n",
				truncKey(it.key, 40),
				formatBytes(it.inputSize),
				formatBytes(it.smallest),
				saved,
			)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "  Targets:     %s\n", strings.Join(outputTargets(m), ", "))
	fmt.Fprintf(w, "  Manifest:    %s\n", manifest.FileName)
	fmt.Fprintln(w)
}

func outputTargets(m *manifest.Manifest) []string {
	set := map[string]bool{}
	for _, a := range m.Assets {
		for _, o := range a.Outputs {
			set[o.Target] = true
		}
	}
	var out []string
	for _, t := range []string{"webp", "jpeg", "png"} {
		if set[t] {
			out = append(out, t)
		}
	}
	return out
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

func truncKey(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max+3:]
}
