package main

import "github.com/jaimedvw/stellar-simulator/internal/cli"

func main() {
	cli.Execute()
}
