package main

import "github.com/MyelinBots/heavenly-go/cmd"

func main() {
	cmd.Execute()
}
