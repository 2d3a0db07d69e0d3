// main.go
package main

import (
	"os"

	"github.com/gewnthar/cragbook/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
