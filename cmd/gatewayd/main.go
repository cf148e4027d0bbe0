// Command gatewayd runs the reverse proxy gateway.
package main

import (
	"fmt"
	"os"

	"github.com/latticegw/gatewayd/internal/gwcmd"
)

func main() {
	if err := gwcmd.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
