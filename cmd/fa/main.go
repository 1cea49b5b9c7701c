// Command fa classifies, converts, minimizes and runs finite automata, and
// keeps a workbench of saved automata.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
