package main

import "clipstamp/internal/cli"

func main() {
	cli.Main()
}
