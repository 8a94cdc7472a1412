// Command rankctl ranks driver cohorts offline and generates sample cohorts.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
