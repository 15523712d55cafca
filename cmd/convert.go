package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/jsphweid/kerngrid/db"
	"github.com/jsphweid/kerngrid/eventfile"
	"github.com/jsphweid/kerngrid/file"
	"github.com/spf13/cobra"
)

var convertOpts file.Options
var convertMetadata bool
var convertOutput string
var convertEvents bool

func init() {
	rootCmd.AddCommand(convertCmd)
	bindConvertFlags(convertCmd, &convertOpts, &convertMetadata)
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "write to this file instead of stdout")
	convertCmd.Flags().BoolVar(&convertEvents, "events", false, "print the parsed score as YAML instead of **kern")
}

// bindConvertFlags registers the conversion options shared by the
// commands that convert files.
func bindConvertFlags(c *cobra.Command, opts *file.Options, metadata *bool) {
	flags := c.Flags()
	flags.BoolVar(&opts.Recip, "recip", false, "add a **recip spine")
	flags.StringVar(&opts.Measures, "measures", "", "only convert a measure range such as 3-8")
	flags.BoolVar(&opts.RemoveIncipit, "no-incipit", false, "drop an invisible incipit at the start")
	flags.BoolVar(&opts.InvisibleRests, "invisible-rests", false, "fill timing gaps in the first voice with invisible rests")
	flags.BoolVar(&opts.MusicXMLBarlines, "musicxml-barlines", false, "number barlines by measure index")
	flags.BoolVar(metadata, "metadata", false, "add reference records from the metadata table")
}

// withMetadata connects to the metadata table when asked to.
func withMetadata(opts file.Options, metadata bool) file.Options {
	if !metadata {
		return opts
	}
	if !db.Enabled() {
		fmt.Fprintln(os.Stderr, "KERNGRID_DYNAMODB_ENDPOINT is not set, skipping metadata")
		return opts
	}
	store, err := db.NewStore()
	if err != nil {
		panic("Could not connect to the metadata table: " + err.Error())
	}
	opts.Metadata = store
	return opts
}

var convertCmd = &cobra.Command{
	Use:   "convert FILE",
	Short: "Converts a MIDI, MusicXML or event file to **kern",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var w io.Writer = os.Stdout
		if convertOutput != "" {
			f, err := os.Create(convertOutput)
			if err != nil {
				panic("Could not create output file: " + err.Error())
			}
			defer f.Close()
			w = f
		}

		if convertEvents {
			cobra.CheckErr(DumpEvents(args[0], w))
			return
		}
		cobra.CheckErr(Convert(args[0], withMetadata(convertOpts, convertMetadata), w))
	},
}

func Convert(path string, opts file.Options, w io.Writer) error {
	doc, err := file.ConvertFile(path, opts)
	if err != nil {
		return err
	}
	_, err = doc.WriteTo(w)
	return err
}

// DumpEvents writes the score a file is read into, before merging.
func DumpEvents(path string, w io.Writer) error {
	score, err := file.Load(path)
	if err != nil {
		return err
	}
	return eventfile.Write(w, score)
}
