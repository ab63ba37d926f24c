package main

import "github.com/naka-gawa/year-in-code/cmd"

func main() {
	cmd.Execute()
}
