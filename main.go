package main

import "github.com/ryan-gang/smtp-client/cmd"

func main() {
	cmd.Execute()
}
