// Command faultline analyzes fault-tree models: minimal cut sets,
// top-event probability, and importance factors.
package main

import (
	"os"

	"github.com/faultline-io/faultline/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	if err := cmd.Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
