package main

import "github.com/ryan-gang/smtp-to-kindle/cmd"

func main() {
	cmd.Execute()
}
