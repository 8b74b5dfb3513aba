package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/squeeze/internal/convert"
)

var (
	compressFormat  string
	compressQuality int
	compressOut     string
)

var compressCmd = &cobra.Command{
	Use:   "compress <input>",
	Short: "Re-encode an image as JPEG or PNG",
	Long: `Re-encodes a PNG, JPEG or WebP image as JPEG or PNG.

The requested quality is tuned per source format and image size before it
reaches the encoder. JPEG output drops any alpha channel. PNG output is
lossless and ignores --quality.

Use "-o -" to write to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: runCompress,
}

func init() {
	compressCmd.Flags().StringVarP(&compressFormat, "format", "f", "jpeg", "output format: jpeg, jpg or png")
	compressCmd.Flags().IntVarP(&compressQuality, "quality", "q", 0, "requested quality (0 = config or 80)")
	compressCmd.Flags().StringVarP(&compressOut, "out", "o", "", "output file (default <input>.squeezed.<ext>)")
	rootCmd.AddCommand(compressCmd)
}

func runCompress(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	q := requestedQuality(compressQuality)
	logVerbose("compress %s → %s (quality %d)", args[0], compressFormat, q)

	out, err := newConverter(false).Compress(data, compressFormat, q)
	if err != nil {
		return err
	}
	// Compress accepted the label, so it parses.
	target, _ := convert.ParseTarget(compressFormat)
	return emit(cmd.OutOrStdout(), args[0], outputPath(args[0], compressOut, target.Extension()), data, out)
}

// requestedQuality picks the flag value, then the config value.
func requestedQuality(flag int) int {
	if flag > 0 {
		return flag
	}
	return cfg.Quality
}

// outputPath returns out, or <input stem>.squeezed.<ext> next to the input.
func outputPath(input, out, ext string) string {
	if out != "" {
		return out
	}
	stem := strings.TrimSuffix(input, filepath.Ext(input))
	return stem + ".squeezed." + ext
}

// emit writes data to path ("-" is stdout) and reports the size change.
func emit(w io.Writer, input, path string, in, out []byte) error {
	if path == "-" {
		_, err := w.Write(out)
		return err
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	ratio := float64(0)
	if len(out) > 0 {
		ratio = float64(len(in)) / float64(len(out))
	}
	fmt.Fprintf(w, "  %s → %s  %s → %s  (%.2fx)\n",
		input, path,
		formatBytes(int64(len(in))), formatBytes(int64(len(out))),
		ratio,
	)
	return nil
}
