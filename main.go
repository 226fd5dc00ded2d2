package main

import "github.com/mirlib/noteseq/cmd"

func main() {
	cmd.Execute()
}
