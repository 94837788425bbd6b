package main

import "forge/cli"

func main() {
	cli.Execute()
}
