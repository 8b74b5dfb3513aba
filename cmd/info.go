package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/squeeze/internal/convert"
)

var infoJSON bool

var infoCmd = &cobra.Command{
	Use:   "info <input>...",
	Short: "Print dimensions, detected format and size of images",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runInfo,
}

func init() {
	infoCmd.Flags().BoolVar(&infoJSON, "json", false, "print JSON")
	rootCmd.AddCommand(infoCmd)
}

type fileInfo struct {
	Path string `json:"path"`
	convert.ImageInfo
	WebPRecommended bool `json:"webpRecommended"`
}

func runInfo(cmd *cobra.Command, args []string) error {
	var infos []fileInfo
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		info, err := convert.GetImageInfo(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		infos = append(infos, fileInfo{
			Path:            path,
			ImageInfo:       info,
			WebPRecommended: convert.ShouldConvertToWebP(data),
		})
	}

	out := cmd.OutOrStdout()
	if infoJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if len(infos) == 1 {
			return enc.Encode(infos[0])
		}
		return enc.Encode(infos)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tFORMAT\tSIZE\tDIMENSIONS\tASPECT\tWEBP")
	for _, fi := range infos {
		rec := "-"
		if fi.WebPRecommended {
			rec = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%dx%d\t%.3f\t%s\n",
			fi.Path, fi.Format, formatBytes(int64(fi.Size)), fi.Width, fi.Height, fi.AspectRatio, rec)
	}
	return tw.Flush()
}
