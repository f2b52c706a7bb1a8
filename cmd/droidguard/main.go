package main

import (
	"os"

	"github.com/droidhooks/droidguard/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
