package main

import "github.com/chatseal/client-go/cmd/chatseal/cmd"

func main() {
	cmd.Execute()
}
