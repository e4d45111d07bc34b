// Package main is the single-binary entrypoint for MindWell.
package main

import "github.com/mindwell-app/mindwell/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
