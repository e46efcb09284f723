package main

import "github.com/cgrotz/cgrotz.github.io/cmd"

func main() {
	cmd.Execute()
}
