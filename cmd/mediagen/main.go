package main

import "mediagen/internal/cli"

func main() {
	cli.Execute()
}
