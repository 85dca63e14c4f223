package main

import "github.com/geomosaic-labs/geomosaic-cli/internal/adapters/driving/cli"

func main() {
	cli.Execute()
}
