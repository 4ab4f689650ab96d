// Command colorpickd drives simulated render nodes through the colour
// picker and reports the colours each node settles on.
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
