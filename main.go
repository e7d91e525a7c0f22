package main

import "github.com/msomdec/snapmap/internal/cli"

func main() {
	cli.Execute()
}
