package main

import "github.com/vibast-solutions/ms-go-academics/cmd"

func main() {
	cmd.Execute()
}
