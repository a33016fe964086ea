package main

import "github.com/nanocube/cmd/cli/cmd"

func main() {
	cmd.Execute()
}
