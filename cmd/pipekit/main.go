// cmd/pipekit/main.go
package main

import (
	"os"

	"github.com/dalemusser/pipekit/internal/cli"
)

func main() {
	os.Exit(cli.Run("pipekit", os.Args[1:]))
}
