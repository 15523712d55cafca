package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jsphweid/kerngrid/constants"
	"github.com/jsphweid/kerngrid/grid"
	"github.com/jsphweid/kerngrid/model"
	"github.com/jsphweid/kerngrid/util"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Reports on the output of index",
	Long:  `Reads the manifest in the output directory and checks every converted file.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(Report(constants.GetOutputDir()).String())
	},
}

type fileReport struct {
	lines    int
	measures int
	spines   int
	err      error
}

type outputReport struct {
	numFiles   int
	numFailed  int
	lines      []int
	measures   []int
	spines     []int
	spineCheck map[string]error
}

func (r outputReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "numFiles: %v\n", r.numFiles)
	fmt.Fprintf(&b, "numFailed: %v\n", r.numFailed)
	fmt.Fprintf(&b, "numLines: %v\n", util.Sum(r.lines))
	fmt.Fprintf(&b, "numMeasures: %v\n", util.Sum(r.measures))
	fmt.Fprintf(&b, "maxSpines: %v\n", util.Max(r.spines))
	fmt.Fprintf(&b, "filesWithBadSpines: %v\n", len(r.spineCheck))
	for _, name := range util.GetKeys(r.spineCheck) {
		fmt.Fprintf(&b, "  %v: %v\n", name, r.spineCheck[name])
	}
	return b.String()
}

func Report(dir string) outputReport {
	manifest := util.ReadBinaryOrPanic[model.Manifest](filepath.Join(dir, constants.ManifestFilename))
	report := outputReport{spineCheck: make(map[string]error)}
	for _, num := range util.GetKeys(manifest) {
		entry := manifest[num]
		report.numFiles++
		if entry.Output == "" {
			report.numFailed++
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Output))
		if err != nil {
			panic("Could not read output file: " + err.Error())
		}
		fr := analyzeKern(string(data))
		report.lines = append(report.lines, fr.lines)
		report.measures = append(report.measures, fr.measures)
		report.spines = append(report.spines, fr.spines)
		if fr.err != nil {
			report.spineCheck[entry.Source] = fr.err
		}
	}
	return report
}

func analyzeKern(text string) fileReport {
	var fr fileReport
	var lines [][]string
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		fr.lines++
		if strings.HasPrefix(line, "!!") {
			continue
		}
		fields := strings.Split(line, "\t")
		if strings.HasPrefix(fields[0], "=") {
			fr.measures++
		}
		if len(fields) > fr.spines {
			fr.spines = len(fields)
		}
		lines = append(lines, fields)
	}
	doc := grid.Document{Lines: lines}
	fr.err = doc.CheckSpines()
	return fr
}
