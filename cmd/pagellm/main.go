package main

import (
	"os"

	"pagellm/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
