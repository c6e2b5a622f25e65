// Command estflow assembles EST fragments into consensus contigs.
//
// Usage:
//
//	estflow [command] [options]
//
// Commands:
//
//	assemble    Assemble fragments into consensus contigs
//	overlap     List the pairwise overlaps of a fragment set
//	align       Locally align two fragments
//	stats       Summarise a fragment set
//	version     Show version information
package main

import "github.com/aria-lang/estflow-go/internal/cli"

func main() {
	cli.Execute()
}
