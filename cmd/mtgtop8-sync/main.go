package main

import "github.com/pfrederiksen/mtgtop8-sync/internal/cli"

func main() {
	cli.Execute()
}
