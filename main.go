package main

import "creativehub/cli"

func main() {
	cli.Execute()
}
