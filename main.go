package main

import "github.com/jsphweid/kerngrid/cmd"

func main() {
	cmd.Execute()
}
