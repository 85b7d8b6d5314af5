package main

import "github.com/hookdsh/hookd/commands"

func main() {
	commands.Execute()
}
