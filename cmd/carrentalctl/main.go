// Command carrentalctl is an operator tool for the rental service:
// it hashes passwords, issues API bearer tokens, and creates accounts.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
