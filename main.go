// The main package for the bracket-crawler executable.
package main

import (
	"github.com/JakeFAU/bracket-crawler/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
