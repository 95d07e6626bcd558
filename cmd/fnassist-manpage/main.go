package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/fnassist/cmd/fnassist"
)

func main() {
	rootCmd := fnassist.NewRootCmd()

	err := doc.GenMan(rootCmd, fnassist.ManHeader(), os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
