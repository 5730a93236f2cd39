// Command propimport validates property listing CSV files and imports them
// into the configured store, either from the command line or over HTTP.
package main

import "os"

func main() {
	os.Exit(run(os.Args[1:], nil, os.Stdin, os.Stdout, os.Stderr))
}
