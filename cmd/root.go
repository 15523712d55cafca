package cmd

import (
	"os"

	"github.com/jsphweid/kerngrid/constants"
	"github.com/jsphweid/kerngrid/debug"
	"github.com/spf13/cobra"
)

var verbose bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print diagnostics to stderr")
}

var rootCmd = &cobra.Command{
	Use:   "kerngrid",
	Short: "Merges scores into Humdrum **kern",
	Long: `Merges the parts of MIDI, MusicXML and event files into a single
Humdrum **kern score, one line per musical instant.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			debug.EnableWriter(os.Stderr)
			return
		}
		path := constants.GetLogPath()
		if path == "" {
			return
		}
		if err := debug.Enable(path); err != nil {
			panic("Could not enable diagnostics: " + err.Error())
		}
	},
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
