// Command skillmatch ranks candidates locally and talks to a running server.
package main

import (
	"fmt"
	"os"
)

// Exit codes.
const (
	ExitSuccess = 0
	ExitError   = 1
)

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ExitError)
	}
}
