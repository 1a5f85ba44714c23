// Package main is the entry point for the rankfuse CLI.
package main

import (
	"fmt"
	"os"

	"github.com/corpusworks/rankfuse/cmd/rankfuse/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
