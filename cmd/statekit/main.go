// Command statekit runs state container scenarios from YAML files.
package main

import (
	"os"

	"github.com/go-drift/statekit/cmd/statekit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
