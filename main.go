package main

import (
	"github.com/vulndeck/vulndeck-cli/cmd"
)

// main is the entry point for the vulndeck CLI.
func main() {
	// Execute the root command defined in the cmd package. This handles
	// all command-line parsing, configuration, and execution.
	cmd.Execute()
}
