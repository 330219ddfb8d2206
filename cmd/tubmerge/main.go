// Package main provides the entry point for the tubmerge CLI tool.
package main

import (
	"github.com/roverlabs/tubmerge/cmd/tubmerge/cmd"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
