package main

import "github.com/chauveaul/playbot/cmd"

func main() {
	cmd.Execute()
}
