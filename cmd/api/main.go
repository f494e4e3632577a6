// Package main is the gridlock command line entry point. It serves the
// deadlock-analysis HTTP API and offers offline analysis of system
// state documents.
package main

func main() {
	Execute()
}
