// Command feedctl runs maintenance tasks against the feed database and
// image store.
package main

import (
	"fmt"
	"os"

	"postfeed/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "feedctl:", err)
		os.Exit(1)
	}
}
