package main

import "tasknest/internal/cli"

func main() {
	cli.Execute()
}
