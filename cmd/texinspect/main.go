// Command texinspect inspects, dumps and converts texture files the way
// the texture package loads them.
package main

import (
	"os"

	"github.com/gogpu/texture/cmd/texinspect/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
