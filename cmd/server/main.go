package main

import "github.com/delphinium/delphinium/cmd/server/cmd"

func main() {
	cmd.Execute()
}
