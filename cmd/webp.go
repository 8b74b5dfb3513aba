package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/squeeze/internal/convert"
	"github.com/AnyUserName/squeeze/internal/format"
)

var (
	webpQuality int
	webpLossy   bool
	webpOut     string
	webpAuto    bool
)

var webpCmd = &cobra.Command{
	Use:   "webp <input>",
	Short: "Convert an image to WebP",
	Long: `Converts a PNG, JPEG or WebP image to WebP.

Output is lossless by default and the quality is only logged. --lossy (or
webp_lossy in the config file) encodes lossy at the tuned quality.

With --auto the input is only converted when WebP is likely to pay off: never
for WebP input, and for JPEG only above 500 KiB. Otherwise it is compressed
as JPEG.`,
	Args: cobra.ExactArgs(1),
	RunE: runWebP,
}

func init() {
	webpCmd.Flags().IntVarP(&webpQuality, "quality", "q", 0, "requested quality (0 = config or 80)")
	webpCmd.Flags().BoolVar(&webpLossy, "lossy", false, "encode lossy WebP at the tuned quality")
	webpCmd.Flags().StringVarP(&webpOut, "out", "o", "", "output file (default <input>.squeezed.webp)")
	webpCmd.Flags().BoolVar(&webpAuto, "auto", false, "fall back to JPEG when WebP would not help")
	rootCmd.AddCommand(webpCmd)
}

func runWebP(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	toWebP := true
	if webpAuto {
		toWebP = convert.ShouldConvertToWebP(data)
	}
	target := format.TargetWebP
	if !toWebP {
		target = format.TargetJPEG
		logVerbose("%s: webp would not help, compressing as jpeg", args[0])
	}

	out, err := newConverter(webpLossy).Process(data, toWebP, requestedQuality(webpQuality))
	if err != nil {
		return err
	}
	return emit(cmd.OutOrStdout(), args[0], outputPath(args[0], webpOut, target.Extension()), data, out)
}
