package main

import "github.com/gatewise/gatekeeper/cmd"

func main() {
	cmd.Execute()
}
