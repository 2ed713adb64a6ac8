package main

import (
	"os"

	"github.com/pterodactyl/transactfs/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
