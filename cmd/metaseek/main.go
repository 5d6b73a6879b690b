// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"os"

	"github.com/apimgr/metaseek/internal/client"
)

// Build-time variables, set via -ldflags.
var (
	version   = "dev"
	commitID  = "unknown"
	buildDate = "unknown"
)

func main() {
	client.Version = version
	client.CommitID = commitID
	client.BuildDate = buildDate

	if err := client.Execute(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
