package main

import "github.com/salesdesk/salesdesk/cmd/salesdesk/cli"

func main() {
	cli.Execute()
}
