package main

import (
	"fmt"
	"os"

	"github.com/Chris4081/memauto-go-sdk/cli"
)

func main() {
	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
