package main

import "github.com/brk3/habitkeeper/cmd"

func main() {
	cmd.Execute()
}
