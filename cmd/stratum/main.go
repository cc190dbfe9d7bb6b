package main

import (
	"os"

	"github.com/stratum-quant/stratum/cmd/stratum/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
