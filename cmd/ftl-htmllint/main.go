package main

import "ftl-htmllint/internal/cli"

func main() {
	cli.Execute()
}
