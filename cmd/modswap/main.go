package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"

	"github.com/OpenGG/modswap/internal/cli"
)

var (
	exitFunc           = os.Exit
	args               = func() []string { return os.Args[1:] }
	stdout   io.Writer = os.Stdout
	stderr   io.Writer = os.Stderr
	newFs              = afero.NewOsFs
)

func main() {
	exitFunc(run())
}

func run() int {
	cmd := cli.NewRootCommand(newFs(), cli.NewPromptUI(os.Stdin, stdout), stdout, stderr)
	cmd.SetArgs(args())
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
