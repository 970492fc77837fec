package main

import "github.com/pmdash/pmdash/cmd"

func main() {
	cmd.Execute()
}
