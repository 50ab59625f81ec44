package main

import "github.com/okonechnikov/chromesnap/cmd/chromesnap/cmd"

func main() {
	cmd.Execute()
}
