package main

import "github.com/agentmatrix-dev/agentmatrix/pkg/cli"

func main() {
	cli.Execute()
}
