package main

import (
	"fmt"
	"sort"

	"github.com/ctessum/geom"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <features.geojson>",
	Short: "Summarize a GeoJSON feature collection",
	Long:  "Report feature counts by geometry type, total vertices, and the combined bounding box of a collection.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInfo(args[0])
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(path string) error {
	s, ids, err := loadSession(path)
	if err != nil {
		return err
	}
	defer s.Close()

	counts := make(map[string]int)
	vertices := 0
	bounds := geom.NewBounds()
	for _, f := range s.Store().All() {
		counts[string(f.GeometryType())]++
		vertices += f.VertexCount()
		g, err := f.Geometry()
		if err != nil {
			continue
		}
		bounds.Extend(g.Bounds())
	}

	fmt.Printf("features: %d\n", len(ids))
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Printf("  %-16s %d\n", t, counts[t])
	}
	fmt.Printf("vertices: %d\n", vertices)
	if !bounds.Empty() {
		fmt.Printf("bounds: [%g, %g] - [%g, %g]\n", bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}
	return nil
}
