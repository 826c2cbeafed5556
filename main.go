package main

import "shdw-cli/cmd"

func main() {
	cmd.Execute()
}
