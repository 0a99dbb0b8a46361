package main

import (
	"github.com/sw33tLie/cardscope/cmd"
)

func main() {
	cmd.Execute()
}
