// Command actdb is the command-line interface to an ActDB log.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/actdb/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "actdb:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
