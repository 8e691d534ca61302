// Command timesheetctl logs hours and prepares invoices from the terminal.
// It reads the same configuration as the server and talks to the same
// record store.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Args[1:]...).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
