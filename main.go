package main

import "github.com/solterm/solterm/cmd"

func main() {
	cmd.Execute()
}
