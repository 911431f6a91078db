package main

import "github.com/oldmanfooty/carnival-sync/internal/cli"

func main() {
	cli.Execute()
}
