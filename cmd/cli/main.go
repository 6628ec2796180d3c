package main

import (
	"fmt"
	"os"

	"github.com/openpbrl/openpbrl/internal/api/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
