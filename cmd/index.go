package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/jsphweid/kerngrid/constants"
	"github.com/jsphweid/kerngrid/file"
	"github.com/jsphweid/kerngrid/model"
	"github.com/jsphweid/kerngrid/util"
	"github.com/spf13/cobra"
)

var indexOpts file.Options
var indexMetadata bool

func init() {
	rootCmd.AddCommand(indexCmd)
	bindConvertFlags(indexCmd, &indexOpts, &indexMetadata)
}

var indexCmd = &cobra.Command{
	Use:   "index DIR [maxNum]",
	Short: "Converts every score under a directory",
	Long: `Converts every MIDI, MusicXML and event file under DIR into the output
directory (KERNGRID_OUT_PATH), with a manifest of where each file came from.`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		var maxNum int
		if len(args) == 2 {
			arg1, err := strconv.Atoi(args[1])
			if err != nil {
				panic(err)
			}
			maxNum = arg1
		}

		Index(args[0], maxNum, withMetadata(indexOpts, indexMetadata))
	},
}

// Index recreates the output directory with one uuid named kern file per
// converted score. Files that fail keep their error in the manifest.
func Index(dir string, maxNum int, opts file.Options) model.Manifest {
	outDir := util.RecreateOutputDir()
	paths := util.GatherAllPaths(dir, maxNum, file.IsSupported)
	manifest := file.CreateManifest(paths)

	keys := util.GetKeys(manifest)
	var failed int
	for i, num := range keys {
		entry := manifest[num]
		fmt.Printf("Processing %v of %v files\n", i+1, len(keys))
		doc, err := file.ConvertFile(entry.Source, opts)
		if err != nil {
			fmt.Printf("Skipping %v because: %v\n", entry.Source, err)
			entry.Error = err.Error()
			manifest[num] = entry
			failed++
			continue
		}

		entry.Output = uuid.New().String() + constants.OutputExtension
		f, err := os.Create(filepath.Join(outDir, entry.Output))
		if err != nil {
			panic("Could not create output file: " + err.Error())
		}
		_, err = doc.WriteTo(f)
		f.Close()
		if err != nil {
			panic("Could not write output file: " + err.Error())
		}
		manifest[num] = entry
	}

	util.CreateBinary(filepath.Join(outDir, constants.ManifestFilename), manifest)
	fmt.Printf("Converted %v of %v files\n", len(keys)-failed, len(keys))
	return manifest
}
