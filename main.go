package main

import "github.com/facegate/facegate/cmd"

func main() {
	cmd.Execute()
}
