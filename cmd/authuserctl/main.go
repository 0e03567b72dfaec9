// Command authuserctl runs administrative tasks against the authuser store:
// schema migrations and demo data seeding.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(loadConfig).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
