package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bep/debounce"
	"github.com/jsphweid/kerngrid/constants"
	"github.com/jsphweid/kerngrid/file"
	"github.com/spf13/cobra"
)

var watchOpts file.Options
var watchMetadata bool
var watchOutput string
var watchInterval time.Duration

func init() {
	rootCmd.AddCommand(watchCmd)
	bindConvertFlags(watchCmd, &watchOpts, &watchMetadata)
	watchCmd.Flags().StringVarP(&watchOutput, "output", "o", "", "file to keep converted (defaults to FILE with a .krn extension)")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 250*time.Millisecond, "how often to check FILE for changes")
}

var watchCmd = &cobra.Command{
	Use:   "watch FILE",
	Short: "Converts a file again every time it changes",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		output := watchOutput
		if output == "" {
			output = kernPath(args[0])
		}
		Watch(args[0], output, withMetadata(watchOpts, watchMetadata), watchInterval, nil)
	},
}

func kernPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + constants.OutputExtension
}

func convertTo(path, output string, opts file.Options) error {
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer f.Close()
	return Convert(path, opts, f)
}

// Watch polls path and rewrites output after each burst of changes
// settles. It returns once stop is closed; a nil stop watches forever.
func Watch(path, output string, opts file.Options, interval time.Duration, stop <-chan struct{}) {
	debounced := debounce.New(interval * 2)
	rebuild := func() {
		if err := convertTo(path, output, opts); err != nil {
			fmt.Printf("Could not convert %v: %v\n", path, err)
			return
		}
		fmt.Printf("Wrote %v\n", output)
	}

	var lastMod time.Time
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if info, err := os.Stat(path); err == nil && info.ModTime() != lastMod {
			lastMod = info.ModTime()
			debounced(rebuild)
		}
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}
