// Package main is the pinterest-ads command line client.
package main

import (
	"context"
	"os"

	"github.com/CliForge/pinterest-ads-cli/internal/runtime"
)

// version is set at build time
var version = "dev"

func main() {
	os.Exit(runtime.Main(context.Background(), os.Args[1:], runtime.WithVersion(version)))
}
