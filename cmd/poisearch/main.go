package main

import "github.com/kailas-cloud/poisearch/cmd/poisearch/cmd"

func main() {
	cmd.Execute()
}
