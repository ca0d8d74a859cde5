// Package main provides the genflow command-line client.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	err := newCommand().Run(context.Background(), os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}
