package main

import "github.com/mcoot/rpschat/internal/cli"

func main() {
	cli.Execute()
}
