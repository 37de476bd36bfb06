package main

import "agentctl/cmd"

func main() {
	cmd.Execute()
}
