package main

import "github.com/jsphweid/kernprep/cmd"

func main() {
	cmd.Execute()
}
