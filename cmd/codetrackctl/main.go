// Copyright (c) 2026 CodeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command codetrackctl is the operator CLI for a CodeTrack database.
package main

import (
	"fmt"
	"os"

	"github.com/taibuivan/codetrack/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "codetrackctl:", err)
		os.Exit(1)
	}
}
