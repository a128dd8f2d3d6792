package main

import (
	"fmt"
	"os"

	"github.com/blogstory/internal/cli"
	"github.com/blogstory/internal/config"
)

func main() {
	config.LoadEnvFile()

	if err := cli.NewRootCmd().Execute(); err != nil {
		if !cli.Reported(err) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
