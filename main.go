package main

import "github.com/omnipulse/omnipulse/internal/cli"

func main() {
	cli.Execute()
}
