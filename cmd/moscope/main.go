package main

import "github.com/appsworld/moscope/cmd/moscope/cli"

func main() {
	cli.Execute()
}
