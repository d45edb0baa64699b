package main

import (
	"os"

	"github.com/laurelkeys/kaleidoscopy/pkg/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
