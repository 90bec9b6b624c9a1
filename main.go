package main

import "github.com/agentic-research/divtree/cmd"

func main() {
	cmd.Execute()
}
