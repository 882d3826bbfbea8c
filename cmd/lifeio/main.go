// Package main is the single-binary entrypoint for LifeIO.
package main

import "github.com/lifeio/lifeio/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
