package main

import "github.com/feltnet/felt/cmd"

func main() {
	cmd.Execute()
}
