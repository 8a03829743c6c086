// cmd/salesdash/main.go
//
// salesdash – process entry point.
//
// Exit codes
// ----------
//
//	0  clean shutdown
//	1  runtime failure (lock held, database unavailable, listener error)
//	2  configuration failure (bad path or invalid setting)
package main

import (
	"fmt"
	"os"

	"github.com/mim3/salesdash/internal/cli"
	"github.com/mim3/salesdash/internal/config"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "salesdash: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if config.IsConfigError(err) {
		return 2
	}
	return 1
}
