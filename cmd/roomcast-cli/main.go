package main

import "github.com/nfrund/roomcast/cmd/roomcast-cli/cmd"

func main() {
	cmd.Execute()
}
