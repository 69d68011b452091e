// Package main is responsible for the main func of nodeadmin.  The actual work
// is done in the cmd package.
package main

import "github.com/ameshkov/nodeadmin/internal/cmd"

func main() {
	cmd.Main()
}
