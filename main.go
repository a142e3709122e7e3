package main

import "github.com/KaramelBytes/lungstat-cli/cmd"

func main() {
	cmd.Execute()
}
