// Command geostorm is a headless workbench for editing vector map
// features: it loads GeoJSON collections into an editing session and
// runs the same geometry operations an interactive host would trigger.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
