package main

import (
	"fmt"
	"os"

	"github.com/kaleido-io/mintbuffer/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "mintbuffer: %s\n", err)
		os.Exit(1)
	}
}
