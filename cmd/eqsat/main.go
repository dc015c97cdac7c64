// Command eqsat matches patterns against e-graphs and applies rewrite rules.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/eqsat/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
