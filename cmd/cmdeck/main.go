package main

import (
	"os"

	"github.com/waabox/cmdeck/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
