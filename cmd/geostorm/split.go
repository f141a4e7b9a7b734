package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ctessum/geom"
	"github.com/spf13/cobra"
)

var (
	splitInput  string
	splitOutput string
	splitTarget string
	splitLine   string
)

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Cut one feature along a line",
	Long: `Split a polygon or line feature along a cutting line and replace it
with the resulting parts. The line is given as space-separated x,y pairs,
for example --line "2,-1 2,5".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSplit()
	},
}

func init() {
	rootCmd.AddCommand(splitCmd)

	splitCmd.Flags().StringVarP(&splitInput, "input", "i", "", "input GeoJSON file")
	splitCmd.Flags().StringVarP(&splitOutput, "output", "o", "", "output GeoJSON file (default stdout)")
	splitCmd.Flags().StringVar(&splitTarget, "target", "", "id of the feature to split")
	splitCmd.Flags().StringVar(&splitLine, "line", "", `cutting line as "x1,y1 x2,y2 ..."`)
	splitCmd.MarkFlagRequired("input")
	splitCmd.MarkFlagRequired("target")
	splitCmd.MarkFlagRequired("line")
}

func runSplit() error {
	cutter, err := parseLine(splitLine)
	if err != nil {
		return err
	}

	s, _, err := loadSession(splitInput)
	if err != nil {
		return err
	}
	defer s.Close()

	parts, err := s.SplitFeature(splitTarget, cutter)
	if err != nil {
		return err
	}
	log.WithField("parts", len(parts)).Info("split completed")

	return writeCollection(splitOutput, s.Store().ExportCollection())
}

// parseLine parses space-separated x,y pairs into a line string.
func parseLine(spec string) (geom.LineString, error) {
	fields := strings.Fields(spec)
	if len(fields) < 2 {
		return nil, fmt.Errorf("cutting line needs at least two points, got %d", len(fields))
	}
	line := make(geom.LineString, 0, len(fields))
	for _, field := range fields {
		xy := strings.Split(field, ",")
		if len(xy) != 2 {
			return nil, fmt.Errorf("bad point %q: want x,y", field)
		}
		x, err := strconv.ParseFloat(xy[0], 64)
		if err != nil {
			return nil, fmt.Errorf("bad point %q: %w", field, err)
		}
		y, err := strconv.ParseFloat(xy[1], 64)
		if err != nil {
			return nil, fmt.Errorf("bad point %q: %w", field, err)
		}
		line = append(line, geom.Point{X: x, Y: y})
	}
	return line, nil
}
