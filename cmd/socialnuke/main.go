// socialnuke: bulk-delete or export your own messages on social
// platforms, under their rate limits.
package main

import (
	"os"

	"github.com/kekst/socialnuke/internal/cli"
)

// Build-time variables injected by GoReleaser via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersion(version, commit, date)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
