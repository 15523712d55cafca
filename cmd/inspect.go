package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jsphweid/kerngrid/file"
	"github.com/jsphweid/kerngrid/grid"
	"github.com/jsphweid/kerngrid/merge"
	"github.com/jsphweid/kerngrid/sample"
	"github.com/spf13/cobra"
)

var inspectOpts file.Options

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVar(&inspectOpts.Measures, "measures", "", "only inspect a measure range such as 3-8")
}

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE",
	Short: "Shows the stitched grid of a score",
	Long:  `Shows the stitched grid of a score measure by measure, before barlines and manipulators are added.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(Inspect(args[0], inspectOpts))
	},
}

var (
	measureStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7aa2f7"))
	dataStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#c0caf5"))
	interpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0af68"))
	commentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#565f89")).Italic(true)
	timestampStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ece6a")).Width(8)
)

func sliceStyle(s *grid.Slice) lipgloss.Style {
	switch {
	case s.IsData():
		return dataStyle
	case s.IsInterpretation():
		return interpStyle
	}
	return commentStyle
}

func Inspect(path string, opts file.Options) string {
	score, err := file.Load(path)
	if err != nil {
		panic("Could not load score: " + err.Error())
	}
	if opts.Measures != "" {
		from, to, err := sample.ParseRange(opts.Measures)
		if err != nil {
			panic("Could not read measure range: " + err.Error())
		}
		score, err = sample.Measures(score, from, to)
		if err != nil {
			panic("Could not cut measures: " + err.Error())
		}
	}
	g, err := merge.Stitch(score, opts.Options)
	if err != nil {
		panic("Could not stitch score: " + err.Error())
	}
	return renderGrid(g)
}

func renderGrid(g *grid.Grid) string {
	var b strings.Builder
	for i, m := range g.Measures {
		b.WriteString(measureStyle.Render(fmt.Sprintf("measure %d (number %d, %v quarters, %v)", i+1, m.Number, m.Duration, m.Style)))
		b.WriteString("\n")
		for _, s := range m.Slices {
			line := lipgloss.JoinHorizontal(lipgloss.Top,
				timestampStyle.Render(s.Timestamp.String()),
				sliceStyle(s).Render(s.String()),
			)
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String()
}
