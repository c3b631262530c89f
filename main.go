package main

import "github.com/iksnae/enhance-session/cmd"

func main() {
	cmd.Execute()
}
