// Command gophergap solves generalized assignment problems with shared tasks.
//
// Problems are described in YAML files (see package gapfile). For each file,
// gophergap prints every optimal, maximal assignment.
package main

import (
	"os"
	"runtime/debug"
)

func main() {
	// Searches allocate a lot of short-lived assignments.
	debug.SetGCPercent(300)
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
