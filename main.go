// Package main is the entry point for the rocq CLI.
package main

import "github.com/MathisBD/rocq/cmd"

func main() {
	cmd.Execute()
}
